// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "time"

// FaqEntry is one question/answer pair from the knowledge base.
// Immutable once parsed; a corpus reload replaces entries wholesale.
type FaqEntry struct {
	Question string
	Answer   string
	Position int // order of first appearance in the source document
}

// Corpus is the full ordered set of parsed FAQ entries.
// A valid corpus is never empty; zero entries is a parse failure.
type Corpus struct {
	Entries  []FaqEntry
	LoadedAt time.Time
}

// Len returns the number of entries in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// ScoredEntry pairs an entry with its relevance score for one query.
// Computed fresh per query; never cached.
type ScoredEntry struct {
	Entry FaqEntry
	Score int
}

// ContextMode selects which entries accompany a question in the prompt.
type ContextMode string

const (
	// ModeAll includes the first entries of the corpus by position, up to a hard cap.
	ModeAll ContextMode = "all"
	// ModeKeyword includes the entries ranked most relevant by lexical overlap.
	ModeKeyword ContextMode = "keyword"
)

// Valid reports whether the mode is one of the supported context modes.
func (m ContextMode) Valid() bool {
	return m == ModeAll || m == ModeKeyword
}

// PromptRequest fully determines a rendered prompt; no hidden state.
type PromptRequest struct {
	Question string
	Context  []FaqEntry
	Mode     ContextMode
}

// Answer is the pipeline's successful result: the generated text plus
// diagnostic metadata for the request layer to persist and serialize.
type Answer struct {
	Text        string
	Elapsed     time.Duration // wall clock around the backend call only
	Mode        ContextMode
	ContextUsed int // entries included in the prompt
}

// Exchange is one persisted question/answer interaction.
type Exchange struct {
	ID            int64
	Question      string
	Answer        string
	Model         string
	ContextMethod string
	ProcessingMS  int64
	CreatedAt     time.Time
}
