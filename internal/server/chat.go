package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/conversations"
	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/assistant/pkg/logger"
)

const identityTimeout = 2 * time.Second

type chatRequest struct {
	Message             string          `json:"message"`
	ConversationID      string          `json:"conversationId"`
	PageContext         json.RawMessage `json:"pageContext"`
	ConversationHistory json.RawMessage `json:"conversationHistory"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	ctx, cancel := context.WithCancel(logx.WithRequestID(r.Context(), requestID))
	defer cancel()
	log := logx.Ctx(ctx)
	w.Header().Set("X-Request-ID", requestID)

	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		log.Info().Err(err).Msg("invalid chat request body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page, err := model.DecodePageContext(req.PageContext)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable page context")
		page = nil
	}

	msg := model.IncomingMessage{
		Message:        req.Message,
		ConversationID: strings.TrimSpace(req.ConversationID),
		UserID:         s.resolveUser(ctx, r),
		Page:           page,
		History:        conversations.DecodeHistory(req.ConversationHistory),
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		log.Error().Err(err).Msg("cannot stream response")
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	sse.start()

	log.Info().
		Str("conversation_id", msg.ConversationID).
		Bool("authenticated", msg.UserID != "").
		Str("page", string(page.Kind())).
		Int("history", len(msg.History)).
		Msg("chat request received")

	s.relay(ctx, cancel, r.Context(), sse, s.deps.Chat.Run(ctx, msg))
}

// relay copies events to the client until the channel closes. After the
// client goes away the request is canceled and the channel is still drained
// so the producer can finish.
func (s *Server) relay(ctx context.Context, cancel context.CancelFunc, clientCtx context.Context, sse *sseWriter, events <-chan model.StreamEvent) {
	var tick <-chan time.Time
	if s.cfg.HeartbeatInterval > 0 {
		ticker := time.NewTicker(s.cfg.HeartbeatInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	connected := true
	disconnect := func(err error) {
		connected = false
		tick = nil
		cancel()
		s.deps.Metrics.ClientDisconnected()
		logx.Ctx(ctx).Info().AnErr("cause", err).Msg("client disconnected, draining stream")
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !connected {
				continue
			}
			if clientCtx.Err() != nil {
				disconnect(clientCtx.Err())
				continue
			}
			if err := sse.writeEvent(ev); err != nil {
				disconnect(err)
			}
		case <-tick:
			if err := sse.writeKeepAlive(); err != nil {
				disconnect(err)
				continue
			}
			s.deps.Metrics.KeepAlive()
		}
	}
}

// resolveUser maps the bearer token to a user id. Any failure is anonymous.
func (s *Server) resolveUser(ctx context.Context, r *http.Request) string {
	token := bearerToken(r)
	if token == "" || s.deps.Identity == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, identityTimeout)
	defer cancel()
	userID, err := s.deps.Identity.ResolveUser(ctx, token)
	if err != nil {
		logx.Ctx(ctx).Warn().Err(err).Msg("identity lookup failed, continuing anonymously")
		return ""
	}
	return userID
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
