package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
)

// fakeLLM implements ports.LLMService for testing.
type fakeLLM struct {
	response   string
	err        error
	delay      time.Duration
	lastPrompt string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) Model() string { return "fake" }

// fakeCorpus implements ports.CorpusProvider.
type fakeCorpus struct {
	corpus *entities.Corpus
}

func (f *fakeCorpus) Current() *entities.Corpus { return f.corpus }

func corpusOf(entries ...entities.FaqEntry) *fakeCorpus {
	return &fakeCorpus{corpus: &entities.Corpus{Entries: entries}}
}

func entryN(i int, q, a string) entities.FaqEntry {
	return entities.FaqEntry{Question: q, Answer: a, Position: i}
}

func TestAnswer_KeywordModeSelectsRelevantEntry(t *testing.T) {
	llm := &fakeLLM{response: "You have 30 days."}
	uc := NewAnswerUseCase(corpusOf(
		entryN(0, "What is the refund policy?", "30 days with receipt."),
		entryN(1, "Contact support?", "Email or phone."),
	), llm, 5, 5, zap.NewNop())

	ans, err := uc.Answer(context.Background(), "refund policy", entities.ModeKeyword)
	require.NoError(t, err)

	assert.Equal(t, "You have 30 days.", ans.Text)
	assert.Equal(t, entities.ModeKeyword, ans.Mode)
	assert.Equal(t, 1, ans.ContextUsed)
	assert.Contains(t, llm.lastPrompt, "Q: What is the refund policy?\nA: 30 days with receipt.")
	assert.NotContains(t, llm.lastPrompt, "Contact support?")
	assert.Contains(t, llm.lastPrompt, "refund policy")
}

func TestAnswer_AllModeCappedAtFirstFive(t *testing.T) {
	entries := []entities.FaqEntry{
		entryN(0, "q0 alpha?", "a0"), entryN(1, "q1 bravo?", "a1"),
		entryN(2, "q2 charlie?", "a2"), entryN(3, "q3 delta?", "a3"),
		entryN(4, "q4 echo?", "a4"), entryN(5, "q5 foxtrot?", "a5"),
		entryN(6, "q6 golf?", "a6"), entryN(7, "q7 hotel?", "a7"),
	}
	llm := &fakeLLM{response: "ok"}
	uc := NewAnswerUseCase(&fakeCorpus{corpus: &entities.Corpus{Entries: entries}}, llm, 5, 5, zap.NewNop())

	ans, err := uc.Answer(context.Background(), "anything at all", entities.ModeAll)
	require.NoError(t, err)

	assert.Equal(t, 5, ans.ContextUsed)
	assert.Contains(t, llm.lastPrompt, "q4 echo?")
	assert.NotContains(t, llm.lastPrompt, "q5 foxtrot?")
	assert.NotContains(t, llm.lastPrompt, "q7 hotel?")
}

func TestAnswer_EmptyQuestionFailsAtValidation(t *testing.T) {
	uc := NewAnswerUseCase(corpusOf(entryN(0, "q?", "a")), &fakeLLM{}, 5, 5, zap.NewNop())

	_, err := uc.Answer(context.Background(), "   ", entities.ModeKeyword)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entities.ErrEmptyQuestion))

	var perr *entities.PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, StageValidate, perr.Stage)
}

func TestAnswer_NoKeywordMatchProceedsWithoutContext(t *testing.T) {
	llm := &fakeLLM{response: "No matching policy found."}
	uc := NewAnswerUseCase(corpusOf(
		entryN(0, "What is the refund policy?", "30 days."),
	), llm, 5, 5, zap.NewNop())

	ans, err := uc.Answer(context.Background(), "zebra quantum flux", entities.ModeKeyword)
	require.NoError(t, err)

	assert.Equal(t, 0, ans.ContextUsed)
	assert.NotContains(t, llm.lastPrompt, "Q: What is the refund policy?")
	assert.Contains(t, llm.lastPrompt, "zebra quantum flux")
}

func TestAnswer_BackendFailurePropagatesWithStage(t *testing.T) {
	backendErr := &entities.BackendError{Kind: entities.FailureTimeout, Detail: "deadline"}
	uc := NewAnswerUseCase(corpusOf(entryN(0, "q?", "a")), &fakeLLM{err: backendErr}, 5, 5, zap.NewNop())

	_, err := uc.Answer(context.Background(), "a real question", entities.ModeKeyword)
	require.Error(t, err)

	var perr *entities.PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, StageInvoke, perr.Stage)

	kind, ok := entities.BackendKind(err)
	require.True(t, ok)
	assert.Equal(t, entities.FailureTimeout, kind)
}

func TestAnswer_ElapsedCoversInvocationOnly(t *testing.T) {
	llm := &fakeLLM{response: "ok", delay: 30 * time.Millisecond}
	uc := NewAnswerUseCase(corpusOf(entryN(0, "q?", "a")), llm, 5, 5, zap.NewNop())

	ans, err := uc.Answer(context.Background(), "a real question", entities.ModeKeyword)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ans.Elapsed, 30*time.Millisecond)
}

func TestAnswer_InvalidModeDefaultsToKeyword(t *testing.T) {
	llm := &fakeLLM{response: "ok"}
	uc := NewAnswerUseCase(corpusOf(entryN(0, "refund?", "30 days")), llm, 5, 5, zap.NewNop())

	ans, err := uc.Answer(context.Background(), "refund", entities.ContextMode("bogus"))
	require.NoError(t, err)
	assert.Equal(t, entities.ModeKeyword, ans.Mode)
}

func TestAnswer_QuestionTrimmedInPrompt(t *testing.T) {
	llm := &fakeLLM{response: "ok"}
	uc := NewAnswerUseCase(corpusOf(entryN(0, "q?", "a")), llm, 5, 5, zap.NewNop())

	_, err := uc.Answer(context.Background(), "  padded question  ", entities.ModeKeyword)
	require.NoError(t, err)
	assert.True(t, strings.Contains(llm.lastPrompt, "Customer Question: padded question\n"))
}
