package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
	"github.com/helpwise/faqdesk-go/internal/domain/usecases"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) Model() string { return "fake" }

type fakeCorpus struct{ corpus *entities.Corpus }

func (f *fakeCorpus) Current() *entities.Corpus { return f.corpus }

type memStore struct {
	exchanges []entities.Exchange
	nextID    int64
}

func (m *memStore) Save(ctx context.Context, ex entities.Exchange) (int64, error) {
	m.nextID++
	ex.ID = m.nextID
	m.exchanges = append([]entities.Exchange{ex}, m.exchanges...)
	return ex.ID, nil
}

func (m *memStore) Latest(ctx context.Context, limit int) ([]entities.Exchange, error) {
	if limit > len(m.exchanges) {
		limit = len(m.exchanges)
	}
	return m.exchanges[:limit], nil
}

func (m *memStore) Search(ctx context.Context, term string, limit int) ([]entities.Exchange, error) {
	var out []entities.Exchange
	for _, ex := range m.exchanges {
		if strings.Contains(ex.Question, term) && len(out) < limit {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (m *memStore) Count(ctx context.Context) (int, error) { return len(m.exchanges), nil }

func newTestServer(llm *fakeLLM) (*Server, *memStore) {
	corpus := &fakeCorpus{corpus: &entities.Corpus{Entries: []entities.FaqEntry{
		{Question: "What is the refund policy?", Answer: "30 days with receipt.", Position: 0},
		{Question: "Contact support?", Answer: "Email or phone.", Position: 1},
	}}}
	store := &memStore{}
	logger := zap.NewNop()
	answerUC := usecases.NewAnswerUseCase(corpus, llm, 5, 5, logger)
	historyUC := usecases.NewHistoryUseCase(store)
	return NewServer(Config{Addr: ":0"}, answerUC, historyUC, corpus, llm.Model(), logger), store
}

func doAsk(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestAsk_HappyPath(t *testing.T) {
	srv, store := newTestServer(&fakeLLM{response: "You have 30 days."})
	rec := doAsk(t, srv, `{"question":"What is the refund policy?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "You have 30 days.", resp.Answer)
	assert.Equal(t, "keyword", resp.ContextMethod)
	assert.Equal(t, int64(1), resp.QuestionID)

	require.Len(t, store.exchanges, 1)
	assert.Equal(t, "What is the refund policy?", store.exchanges[0].Question)
	assert.Equal(t, "fake", store.exchanges[0].Model)
}

func TestAsk_ExplicitAllMode(t *testing.T) {
	srv, _ := newTestServer(&fakeLLM{response: "ok"})
	rec := doAsk(t, srv, `{"question":"anything here","context_method":"all"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp askResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "all", resp.ContextMethod)
	assert.Equal(t, 2, resp.ContextEntries)
}

func TestAsk_ValidationFailures(t *testing.T) {
	srv, _ := newTestServer(&fakeLLM{response: "ok"})

	cases := map[string]string{
		"too short":      `{"question":"hi"}`,
		"blank":          `{"question":"   "}`,
		"punctuation":    `{"question":"???!!!"}`,
		"too long":       `{"question":"` + strings.Repeat("x", 501) + `"}`,
		"bad mode":       `{"question":"a valid question","context_method":"vector"}`,
		"malformed body": `{"question": `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doAsk(t, srv, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAsk_BackendFailureStatusMapping(t *testing.T) {
	cases := []struct {
		kind entities.FailureKind
		want int
	}{
		{entities.FailureTimeout, http.StatusServiceUnavailable},
		{entities.FailureUnreachable, http.StatusServiceUnavailable},
		{entities.FailureMalformed, http.StatusBadGateway},
		{entities.FailureUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			srv, store := newTestServer(&fakeLLM{err: &entities.BackendError{Kind: tc.kind, Detail: "test"}})
			rec := doAsk(t, srv, `{"question":"a valid question"}`)
			assert.Equal(t, tc.want, rec.Code)
			assert.Empty(t, store.exchanges, "failures are not persisted")
		})
	}
}

func TestHistory_ReturnsRecent(t *testing.T) {
	srv, store := newTestServer(&fakeLLM{response: "ok"})
	_, _ = store.Save(context.Background(), entities.Exchange{Question: "refund policy?", Answer: "30 days"})
	_, _ = store.Save(context.Background(), entities.Exchange{Question: "shipping?", Answer: "3-5 days"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?n=1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "shipping?", resp.Entries[0].Question)
}

func TestHistory_SearchFilter(t *testing.T) {
	srv, store := newTestServer(&fakeLLM{response: "ok"})
	_, _ = store.Save(context.Background(), entities.Exchange{Question: "refund policy?", Answer: "a"})
	_, _ = store.Save(context.Background(), entities.Exchange{Question: "shipping?", Answer: "a"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?search=refund", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "refund policy?", resp.Entries[0].Question)
}

func TestHistory_InvalidParams(t *testing.T) {
	srv, _ := newTestServer(&fakeLLM{response: "ok"})

	for _, target := range []string{
		"/api/v1/history?n=0",
		"/api/v1/history?n=101",
		"/api/v1/history?n=abc",
		"/api/v1/history?search=x",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(&fakeLLM{response: "ok"})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, float64(2), resp["corpus_entries"])
}
