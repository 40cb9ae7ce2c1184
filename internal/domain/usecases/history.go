package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
	"github.com/helpwise/faqdesk-go/internal/domain/ports"
)

// HistoryPage is one page of past exchanges plus the store total.
type HistoryPage struct {
	Entries []entities.Exchange
	Total   int
}

// HistoryUseCase reads back recorded exchanges.
type HistoryUseCase struct {
	store ports.HistoryStore
}

// NewHistoryUseCase creates a HistoryUseCase backed by store.
func NewHistoryUseCase(store ports.HistoryStore) *HistoryUseCase {
	return &HistoryUseCase{store: store}
}

// Recent returns up to limit exchanges, newest first, optionally filtered by
// a question search term.
func (uc *HistoryUseCase) Recent(ctx context.Context, limit int, search string) (HistoryPage, error) {
	if limit <= 0 {
		limit = 10
	}

	var (
		entries []entities.Exchange
		err     error
	)
	if term := strings.TrimSpace(search); term != "" {
		entries, err = uc.store.Search(ctx, term, limit)
	} else {
		entries, err = uc.store.Latest(ctx, limit)
	}
	if err != nil {
		return HistoryPage{}, fmt.Errorf("loading history: %w", err)
	}

	total, err := uc.store.Count(ctx)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("counting history: %w", err)
	}
	return HistoryPage{Entries: entries, Total: total}, nil
}

// Record persists a successful exchange.
func (uc *HistoryUseCase) Record(ctx context.Context, ex entities.Exchange) (int64, error) {
	id, err := uc.store.Save(ctx, ex)
	if err != nil {
		return 0, fmt.Errorf("recording exchange: %w", err)
	}
	return id, nil
}
