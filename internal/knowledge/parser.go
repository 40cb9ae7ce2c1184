// Package knowledge loads and parses the FAQ knowledge base.
package knowledge

import (
	"strings"

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
)

const (
	questionMarker = "Q:"
	answerMarker   = "A:"
)

// Parse turns raw knowledge-base text into an ordered list of Q/A entries.
//
// A line starting with "Q:" opens a new entry and accumulates question text
// until the next marker; "A:" switches to accumulating answer text, including
// every following non-marker line, until the next "Q:" or end of document.
// Blank lines and markdown headings are structural noise and skipped. Entries
// with an empty question or answer after trimming are dropped. A document that
// yields zero entries is a parse failure, not an empty corpus.
func Parse(raw string) ([]entities.FaqEntry, error) {
	type state int
	const (
		stateNone state = iota
		stateQuestion
		stateAnswer
	)

	var (
		entries  []entities.FaqEntry
		question []string
		answer   []string
		cur      = stateNone
	)

	flush := func() {
		q := strings.TrimSpace(strings.Join(question, " "))
		a := strings.TrimSpace(strings.Join(answer, "\n"))
		question = question[:0]
		answer = answer[:0]
		if q == "" || a == "" {
			return // formatting noise, not fatal
		}
		entries = append(entries, entities.FaqEntry{
			Question: q,
			Answer:   a,
			Position: len(entries),
		})
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, questionMarker):
			if cur != stateNone {
				flush()
			}
			cur = stateQuestion
			question = append(question, strings.TrimSpace(trimmed[len(questionMarker):]))
		case strings.HasPrefix(trimmed, answerMarker):
			if cur == stateNone {
				continue // answer with no question is noise
			}
			cur = stateAnswer
			answer = append(answer, strings.TrimSpace(trimmed[len(answerMarker):]))
		default:
			switch cur {
			case stateQuestion:
				question = append(question, trimmed)
			case stateAnswer:
				// Preserve bullets and indentation inside answers verbatim.
				answer = append(answer, strings.TrimRight(line, " \t"))
			}
		}
	}
	if cur != stateNone {
		flush()
	}

	if len(entries) == 0 {
		return nil, entities.ErrNoEntries
	}
	return entries, nil
}
