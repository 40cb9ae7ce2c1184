// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, not concrete implementations;
// adapters implement them.
package ports

import (
	"context"

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
)

// LLMService generates an answer for an assembled prompt.
// Implementations own timeout and retry discipline and return
// *entities.BackendError for every failure mode.
type LLMService interface {
	// Generate sends the prompt to the backend and returns the generated
	// answer text, trimmed of model formatting artifacts.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the backend model identifier, for persistence and logging.
	Model() string
}

// HistoryStore records and retrieves past exchanges.
type HistoryStore interface {
	// Save persists one exchange and returns its assigned ID.
	Save(ctx context.Context, ex entities.Exchange) (int64, error)

	// Latest returns up to limit exchanges, newest first.
	Latest(ctx context.Context, limit int) ([]entities.Exchange, error)

	// Search returns up to limit exchanges whose question contains term, newest first.
	Search(ctx context.Context, term string, limit int) ([]entities.Exchange, error)

	// Count returns the total number of stored exchanges.
	Count(ctx context.Context) (int, error)
}

// CorpusProvider exposes the current corpus snapshot to readers.
// Implementations must swap snapshots atomically on reload.
type CorpusProvider interface {
	Current() *entities.Corpus
}

// CorpusReloader triggers a corpus reload from its source.
// A failed reload keeps the previous corpus active.
type CorpusReloader interface {
	Reload() error
}
