// Package retrieval ranks knowledge-base entries against a query using
// lexical keyword overlap. The corpus is FAQ-scale, so a linear scan per
// query keeps the selection fully auditable with zero extra inference cost.
package retrieval

import (
	"sort"
	"strings"
	"unicode"

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
)

// Scorer computes keyword-overlap relevance scores. The zero value is usable.
type Scorer struct{}

// questionWeight reflects that a matched question is a stronger relevance
// signal than an incidental word in a long answer.
const (
	questionWeight = 2
	answerWeight   = 1
)

// Score ranks corpus entries against the query and returns up to topK entries
// with a positive score, ordered by score descending and original position
// ascending on ties. It is deterministic and never fails; a query with no
// token overlap yields an empty result.
func (Scorer) Score(query string, corpus []entities.FaqEntry, topK int) []entities.ScoredEntry {
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 || topK <= 0 {
		return nil
	}

	scored := make([]entities.ScoredEntry, 0, len(corpus))
	for _, entry := range corpus {
		qTokens := tokenSet(entry.Question)
		aTokens := tokenSet(entry.Answer)

		score := 0
		for tok := range queryTokens {
			if _, ok := qTokens[tok]; ok {
				score += questionWeight
			}
			if _, ok := aTokens[tok]; ok {
				score += answerWeight
			}
		}
		if score > 0 {
			scored = append(scored, entities.ScoredEntry{Entry: entry, Score: score})
		}
	}

	// Ties break on ascending position so results stay reproducible.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Entry.Position < scored[j].Entry.Position
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// tokenSet splits text into distinct lowercase word tokens. Punctuation is
// stripped; no stemming is applied.
func tokenSet(text string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}
