package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/helpwise/faqdesk-go/internal/domain/entities"
)

const (
	minQuestionLen = 3
	maxQuestionLen = 500
	maxHistoryN    = 100
)

type askRequest struct {
	Question      string `json:"question"`
	ContextMethod string `json:"context_method"`
}

type askResponse struct {
	Answer         string `json:"answer"`
	QuestionID     int64  `json:"question_id"`
	Timestamp      string `json:"timestamp"`
	ProcessingMS   int64  `json:"processing_time_ms"`
	ContextMethod  string `json:"context_method"`
	ContextEntries int    `json:"context_entries"`
}

type historyEntry struct {
	ID           int64  `json:"id"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Timestamp    string `json:"timestamp"`
	ProcessingMS int64  `json:"processing_time_ms"`
}

type historyResponse struct {
	Entries []historyEntry `json:"entries"`
	Count   int            `json:"count"`
	Total   int            `json:"total"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// handleAsk processes a customer question: validate, answer, persist, respond.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	question := strings.TrimSpace(req.Question)
	if msg := validateQuestion(question); msg != "" {
		s.writeError(w, r, http.StatusBadRequest, "invalid question", msg)
		return
	}

	mode := entities.ContextMode(req.ContextMethod)
	if req.ContextMethod == "" {
		mode = entities.ModeKeyword
	} else if !mode.Valid() {
		s.writeError(w, r, http.StatusBadRequest, "invalid context_method",
			`context_method must be "all" or "keyword"`)
		return
	}

	answer, err := s.answer.Answer(r.Context(), question, mode)
	if err != nil {
		s.writeAnswerError(w, r, err)
		return
	}

	id, err := s.history.Record(r.Context(), entities.Exchange{
		Question:      question,
		Answer:        answer.Text,
		Model:         s.model,
		ContextMethod: string(answer.Mode),
		ProcessingMS:  answer.Elapsed.Milliseconds(),
	})
	if err != nil {
		// The answer is already generated; losing the audit record should not
		// turn a good response into an error for the customer.
		s.logger.Error("failed to record exchange",
			zap.Error(err),
			zap.String("request_id", requestID(r.Context())))
	}

	s.writeJSON(w, http.StatusOK, askResponse{
		Answer:         answer.Text,
		QuestionID:     id,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		ProcessingMS:   answer.Elapsed.Milliseconds(),
		ContextMethod:  string(answer.Mode),
		ContextEntries: answer.ContextUsed,
	})
}

// handleHistory returns recent exchanges, optionally filtered by search term.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryN {
			s.writeError(w, r, http.StatusBadRequest, "invalid n",
				"n must be an integer between 1 and 100")
			return
		}
		n = parsed
	}

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	if search != "" && (len(search) < 2 || len(search) > 100) {
		s.writeError(w, r, http.StatusBadRequest, "invalid search",
			"search must be between 2 and 100 characters")
		return
	}

	page, err := s.history.Recent(r.Context(), n, search)
	if err != nil {
		s.logger.Error("history lookup failed", zap.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, "failed to load history", "")
		return
	}

	entries := make([]historyEntry, len(page.Entries))
	for i, ex := range page.Entries {
		entries[i] = historyEntry{
			ID:           ex.ID,
			Question:     ex.Question,
			Answer:       ex.Answer,
			Timestamp:    ex.CreatedAt.UTC().Format(time.RFC3339),
			ProcessingMS: ex.ProcessingMS,
		}
	}
	s.writeJSON(w, http.StatusOK, historyResponse{
		Entries: entries,
		Count:   len(entries),
		Total:   page.Total,
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"corpus_entries": s.corpus.Current().Len(),
	})
}

// handleRoot describes the API.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"name":    "faqdesk",
		"status":  "running",
		"ask":     "POST /api/v1/ask",
		"history": "GET /api/v1/history",
		"health":  "GET /health",
	})
}

// validateQuestion enforces the request-layer question contract. It returns
// an empty string when the question is acceptable.
func validateQuestion(q string) string {
	if len(q) < minQuestionLen {
		return "question must be at least 3 characters"
	}
	if len(q) > maxQuestionLen {
		return "question must be at most 500 characters"
	}
	for _, r := range q {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return ""
		}
	}
	return "question must contain at least some text"
}

// writeAnswerError maps pipeline failures to user-facing statuses: caller
// mistakes to 400, transient backend trouble to 503, a broken backend
// contract to 502, and everything else to 500.
func (s *Server) writeAnswerError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, entities.ErrEmptyQuestion) {
		s.writeError(w, r, http.StatusBadRequest, "invalid question", "question is empty")
		return
	}

	kind, classified := entities.BackendKind(err)
	s.logger.Error("answer pipeline failed",
		zap.Error(err),
		zap.String("kind", string(kind)),
		zap.String("request_id", requestID(r.Context())))

	if !classified {
		s.writeError(w, r, http.StatusInternalServerError, "internal error", "")
		return
	}
	switch kind {
	case entities.FailureTimeout, entities.FailureUnreachable:
		s.writeError(w, r, http.StatusServiceUnavailable,
			"language model backend unavailable", "please retry later")
	case entities.FailureMalformed:
		s.writeError(w, r, http.StatusBadGateway,
			"language model returned an invalid response", "")
	default:
		s.writeError(w, r, http.StatusInternalServerError, "internal error", "")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg, detail string) {
	s.writeJSON(w, status, errorResponse{
		Error:     msg,
		Detail:    detail,
		RequestID: requestID(r.Context()),
	})
}
