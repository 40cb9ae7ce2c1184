package knowledge

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
	"github.com/helpwise/faqdesk-go/internal/metrics"
)

// Snapshot owns the corpus for the process lifetime. The corpus is an
// immutable value behind a single pointer that Reload replaces wholesale;
// concurrent readers see either the fully-old or fully-new corpus, never a
// partially replaced one.
type Snapshot struct {
	path    string
	current atomic.Pointer[entities.Corpus]
	logger  *zap.Logger
}

// Load reads and parses the knowledge base at path. A parse failure at this
// point is fatal to startup: no corpus, no service.
func Load(path string, logger *zap.Logger) (*Snapshot, error) {
	s := &Snapshot{path: path, logger: logger}
	corpus, err := s.read()
	if err != nil {
		return nil, err
	}
	s.current.Store(corpus)
	metrics.CorpusEntries.Set(float64(corpus.Len()))
	logger.Info("knowledge base loaded",
		zap.String("path", path),
		zap.Int("entries", corpus.Len()))
	return s, nil
}

// Current returns the active corpus snapshot. Callers must not mutate it.
func (s *Snapshot) Current() *entities.Corpus {
	return s.current.Load()
}

// Reload re-parses the knowledge base and installs the new corpus atomically.
// On any error the previously valid corpus stays active.
func (s *Snapshot) Reload() error {
	corpus, err := s.read()
	if err != nil {
		s.logger.Warn("knowledge base reload failed, keeping previous corpus",
			zap.String("path", s.path),
			zap.Error(err))
		return err
	}
	old := s.current.Swap(corpus)
	metrics.CorpusEntries.Set(float64(corpus.Len()))
	s.logger.Info("knowledge base reloaded",
		zap.Int("entries", corpus.Len()),
		zap.Int("previous_entries", old.Len()))
	return nil
}

func (s *Snapshot) read() (*entities.Corpus, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge base: %w", err)
	}
	ents, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing knowledge base %s: %w", s.path, err)
	}
	return &entities.Corpus{Entries: ents, LoadedAt: time.Now()}, nil
}
