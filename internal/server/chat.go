package server

import (
	"encoding/json"
	"io"
	"net/http"

	"brainnotes/internal/util"
	"brainnotes/pkg/domain"
)

type chatRequest struct {
	Messages      []domain.ChatMessage `json:"messages"`
	SystemContext string               `json:"systemContext,omitempty"`
}

// handleChat authenticates the caller, assembles the prompt, and relays the
// provider's token stream without buffering the full reply. Everything after
// authentication collapses into a uniform 500 so no internal detail leaks.
// The OPTIONS preflight never reaches here; WithCORS answers it.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	user, ok := s.authorize(r)
	if !ok {
		s.audit(r, "chat.authorize", "fail")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "chat.request", "fail", "user_id", user.ID, "reason", "invalid_json")
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	logger := util.LoggerFromContext(r.Context())
	logger.Debug("chat request", "user_id", user.ID, "messages", len(req.Messages))

	chunks, err := s.app.Chat(r.Context(), user, req.Messages, req.SystemContext)
	if err != nil {
		logger.Error("chat failed", "user_id", user.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	flusher, canFlush := w.(http.Flusher)
	headers := w.Header()
	headers.Set("Content-Type", "text/plain; charset=utf-8")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("X-Accel-Buffering", "no")

	wroteAny := false
	for chunk := range chunks {
		if chunk.Err != nil {
			if !wroteAny {
				logger.Error("provider stream failed", "user_id", user.ID, "err", chunk.Err)
				writeError(w, http.StatusInternalServerError, "Internal error")
				return
			}
			// Headers are gone; the truncated body is all we can signal.
			logger.Error("provider stream interrupted", "user_id", user.ID, "err", chunk.Err)
			return
		}
		if !wroteAny {
			w.WriteHeader(http.StatusOK)
			wroteAny = true
		}
		if _, err := io.WriteString(w, chunk.Content); err != nil {
			// Client went away; the request context cancels the provider call.
			logger.Debug("client disconnected mid-stream", "user_id", user.ID)
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}
	if !wroteAny {
		w.WriteHeader(http.StatusOK)
	}
}
