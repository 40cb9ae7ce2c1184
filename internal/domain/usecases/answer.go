// Package usecases composes the parsing, scoring, prompting, and invocation
// components into the question-answering pipeline.
package usecases

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
	"github.com/helpwise/faqdesk-go/internal/domain/ports"
	"github.com/helpwise/faqdesk-go/internal/prompt"
	"github.com/helpwise/faqdesk-go/internal/retrieval"
)

// Pipeline stage names carried by PipelineError.
const (
	StageValidate = "validate"
	StageAssemble = "assemble"
	StageInvoke   = "invoke"
)

// AnswerUseCase orchestrates context selection, prompt assembly, and backend
// invocation for a single question. Each call is self-contained; the only
// shared state is the read-only corpus snapshot.
type AnswerUseCase struct {
	corpus    ports.CorpusProvider
	llm       ports.LLMService
	scorer    retrieval.Scorer
	assembler prompt.Assembler
	topK      int
	logger    *zap.Logger
}

// NewAnswerUseCase creates an AnswerUseCase with injected dependencies.
func NewAnswerUseCase(corpus ports.CorpusProvider, llm ports.LLMService, topK int, maxContext int, logger *zap.Logger) *AnswerUseCase {
	if topK <= 0 {
		topK = 5
	}
	return &AnswerUseCase{
		corpus:    corpus,
		llm:       llm,
		assembler: prompt.Assembler{MaxContext: maxContext},
		topK:      topK,
		logger:    logger,
	}
}

// Answer runs the pipeline for one question. Elapsed time is measured around
// the backend invocation only; parsing and scoring are deterministic and
// negligible at FAQ scale.
func (uc *AnswerUseCase) Answer(ctx context.Context, question string, mode entities.ContextMode) (entities.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return entities.Answer{}, &entities.PipelineError{Stage: StageValidate, Err: entities.ErrEmptyQuestion}
	}
	if !mode.Valid() {
		mode = entities.ModeKeyword
	}

	selected := uc.selectContext(question, mode)

	rendered, err := uc.assembler.Assemble(entities.PromptRequest{
		Question: question,
		Context:  selected,
		Mode:     mode,
	})
	if err != nil {
		return entities.Answer{}, &entities.PipelineError{Stage: StageAssemble, Err: err}
	}

	// The cap may have trimmed the selection; report what was rendered.
	limit := uc.assembler.MaxContext
	if limit <= 0 {
		limit = prompt.DefaultMaxContext
	}
	used := len(selected)
	if used > limit {
		used = limit
	}

	start := time.Now()
	text, err := uc.llm.Generate(ctx, rendered)
	elapsed := time.Since(start)
	if err != nil {
		return entities.Answer{}, &entities.PipelineError{Stage: StageInvoke, Err: err}
	}

	uc.logger.Debug("question answered",
		zap.String("mode", string(mode)),
		zap.Int("context_entries", used),
		zap.Duration("elapsed", elapsed))

	return entities.Answer{
		Text:        text,
		Elapsed:     elapsed,
		Mode:        mode,
		ContextUsed: used,
	}, nil
}

// selectContext picks the entries accompanying the question. In keyword mode
// a query with no overlapping entries deliberately proceeds with zero
// context; the assembler renders the no-match preamble instead of falling
// back to the full corpus.
func (uc *AnswerUseCase) selectContext(question string, mode entities.ContextMode) []entities.FaqEntry {
	corpus := uc.corpus.Current()
	if corpus.Len() == 0 {
		return nil
	}

	if mode == entities.ModeAll {
		// Passed through in position order; the assembler enforces the cap.
		return corpus.Entries
	}

	ranked := uc.scorer.Score(question, corpus.Entries, uc.topK)
	selected := make([]entities.FaqEntry, len(ranked))
	for i, s := range ranked {
		selected[i] = s.Entry
	}
	return selected
}
