package ws

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/avelier/decoychat/internal/analysis/emotion"
	"github.com/avelier/decoychat/internal/model/decoy"
	"github.com/avelier/decoychat/internal/model/message"
	sessionmodel "github.com/avelier/decoychat/internal/model/session"
	"github.com/avelier/decoychat/internal/service/admission"
	"github.com/avelier/decoychat/internal/service/agent"
	"github.com/avelier/decoychat/internal/service/auth"
	"github.com/avelier/decoychat/internal/service/history"
	"github.com/avelier/decoychat/internal/service/liveness"
	localeservice "github.com/avelier/decoychat/internal/service/locale"
	"github.com/avelier/decoychat/internal/service/registry"
	"github.com/avelier/decoychat/internal/service/typing"
)

// Handler owns the WebSocket side of the session engine: handshake
// validation, the per-session message loop and paced decoy replies.
type Handler struct {
	registry  *registry.Registry
	limiter   *admission.Limiter
	typing    *typing.Engine
	resolver  *localeservice.Resolver
	decoys    decoy.Store
	history   history.Store
	responder agent.Responder
	verifier  auth.Verifier // nil disables credential checks
	monitor   *liveness.Monitor

	readTimeout time.Duration
	upgrader    websocket.Upgrader
}

// New wires the WebSocket handler.
func New(reg *registry.Registry, limiter *admission.Limiter, engine *typing.Engine, resolver *localeservice.Resolver, decoys decoy.Store, hist history.Store, responder agent.Responder, verifier auth.Verifier, monitor *liveness.Monitor, readTimeout time.Duration) *Handler {
	if readTimeout <= 0 {
		readTimeout = 60 * time.Second
	}
	return &Handler{
		registry:    reg,
		limiter:     limiter,
		typing:      engine,
		resolver:    resolver,
		decoys:      decoys,
		history:     hist,
		responder:   responder,
		verifier:    verifier,
		monitor:     monitor,
		readTimeout: readTimeout,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the WebSocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// handleWebSocket validates the handshake, registers the session and runs
// its inbound loop. Handshake policy failures close the channel with a
// policy-violation code before any session is created.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kindRaw := q.Get("conversationKind")
	sessionID := q.Get("sessionId")
	localeParam := q.Get("locale")
	token := q.Get("token")

	var claims auth.Claims
	credentialErr := false
	if h.verifier != nil {
		var err error
		claims, err = h.verifier.Verify(token)
		credentialErr = err != nil
	}

	identity := admission.ResolveClientID(claims.UserID, r)
	decision := h.limiter.CheckAndConsume(identity.Key)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	transport := registry.NewWSTransport(conn)

	// Policy checks run post-upgrade so the client receives a close code and
	// reason instead of a failed HTTP handshake.
	if credentialErr {
		_ = transport.CloseWithReason(websocket.ClosePolicyViolation, "missing or invalid credential")
		return
	}
	if !decision.Allowed {
		denied := message.Error("rate_limited", "admission denied")
		denied["retry_after"] = decision.RetryAfter
		denied.EnsureTimestamp(time.Now())
		_ = transport.WriteJSON(denied)
		_ = transport.CloseWithReason(websocket.CloseTryAgainLater, "rate limit exceeded")
		return
	}
	kind, ok := sessionmodel.ParseKind(kindRaw)
	if !ok {
		_ = transport.CloseWithReason(websocket.ClosePolicyViolation, "unsupported conversation kind: "+kindRaw)
		return
	}
	if localeParam != "" && !h.resolver.Supported(localeParam) {
		_ = transport.CloseWithReason(websocket.ClosePolicyViolation, "unsupported locale: "+localeParam)
		return
	}
	if h.registry.Count() >= h.registry.MaxSessions() {
		_ = transport.CloseWithReason(websocket.CloseTryAgainLater, "server at capacity")
		return
	}

	loc := h.resolver.Resolve(localeservice.Signals{
		QueryParam:     localeParam,
		AcceptLanguage: r.Header.Get("Accept-Language"),
		UserPreference: claims.Locale,
	})

	profile, ok := h.decoys.FindByKind(kind)
	if !ok {
		_ = transport.CloseWithReason(websocket.CloseInternalServerErr, "no decoy available for kind")
		return
	}

	ownerID := claims.UserID
	if ownerID == "" {
		ownerID = identity.Key
	}

	sess, sessCtx := h.registry.Connect(transport, sessionID, ownerID, kind, loc)
	// Teardown is scoped to this handler's own registration; if a reconnect
	// replaced it, the replacement session stays up.
	defer h.registry.DisconnectIf(sess.ID, sessCtx)

	log.Printf("[websocket] session %s connected kind=%s locale=%s-%s tier=%s",
		sess.ID, kind, loc.Locale, loc.Variant, identity.Tier)

	h.monitor.Start(sessCtx, sess.ID)

	// Open with the decoy's first line, paced like any other reply, without
	// blocking the inbound loop. It is recorded up front so the responder sees
	// it in the transcript.
	if err := h.history.Append(sessCtx, history.Message{SessionID: sess.ID, Sender: "agent", Content: profile.OpeningLine}); err != nil {
		log.Printf("[websocket] session %s failed to record opening line: %v", sess.ID, err)
	}
	go h.sendAgentLine(sessCtx, sess.ID, profile, profile.OpeningLine, "")

	h.readLoop(sessCtx, conn, sess, profile)
}

// readLoop processes inbound messages until the transport drops or the
// session is torn down.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, sess sessionmodel.Session, profile decoy.Profile) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[websocket] session %s message handling panicked: %v", sess.ID, rec)
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "internal error"),
				time.Now().Add(time.Second),
			)
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[websocket] session %s read error: %v", sess.ID, err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))

		h.handleMessage(ctx, sess, profile, msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, sess sessionmodel.Session, profile decoy.Profile, msg inboundMessage) {
	switch msg.Type {
	case "ping":
		_ = h.registry.Send(sess.ID, message.Pong(time.Now().UTC()))
	case "user_message":
		h.handleUserMessage(ctx, sess, profile, msg)
	case "typing_start":
		h.registry.SetTyping(sess.ID, true)
	case "typing_stop":
		h.registry.SetTyping(sess.ID, false)
	default:
		_ = h.registry.Send(sess.ID, message.Error("unknown_message_type", "unsupported message type: "+msg.Type))
	}
}

// handleUserMessage records the trainee's message, generates the decoy's
// reply and delivers it paced. Replies run synchronously so per-session
// ordering is preserved.
func (h *Handler) handleUserMessage(ctx context.Context, sess sessionmodel.Session, profile decoy.Profile, msg inboundMessage) {
	if msg.Content == "" {
		return
	}

	if err := h.history.Append(ctx, history.Message{
		ID:        msg.MessageID,
		SessionID: sess.ID,
		Sender:    "user",
		Content:   msg.Content,
	}); err != nil {
		log.Printf("[websocket] session %s failed to record message: %v", sess.ID, err)
	}

	transcript, err := h.history.Transcript(ctx, sess.ID)
	if err != nil {
		log.Printf("[websocket] session %s transcript load failed: %v", sess.ID, err)
	}

	hint := emotion.Analyze(msg.Content, "").ModifierKey()
	reply, err := h.responder.Respond(ctx, profile, transcript, msg.Content, sess.Locale, hint)
	if err != nil {
		log.Printf("[websocket] session %s reply generation failed: %v", sess.ID, err)
		_ = h.registry.Send(sess.ID, message.Error("agent_unavailable", "could not generate a reply"))
		return
	}

	state := emotion.Analyze(msg.Content, reply)
	if err := h.history.Append(ctx, history.Message{SessionID: sess.ID, Sender: "agent", Content: reply}); err != nil {
		log.Printf("[websocket] session %s failed to record reply: %v", sess.ID, err)
	}

	h.sendAgentLine(ctx, sess.ID, profile, reply, state.ModifierKey())
}

// sendAgentLine paces one decoy utterance: typing indicator and progress
// signals while "typing", then the message delivered sentence by sentence.
// Disconnecting the session cancels ctx and stops all further signals.
func (h *Handler) sendAgentLine(ctx context.Context, sessionID string, profile decoy.Profile, text, emotionKey string) {
	h.registry.SetTyping(sessionID, true)
	defer h.registry.SetTyping(sessionID, false)

	total := h.typing.ComputeDelay(text, profile.TypingPersonality, emotionKey)
	chunks := h.typing.ComputeChunkedDelays(text, profile.TypingPersonality, typing.ChunkBySentence)

	progressCtx, stopProgress := context.WithCancel(ctx)
	defer stopProgress()
	go func() {
		_ = h.typing.RunProgress(progressCtx, total, func(ev typing.Event) error {
			switch ev.Kind {
			case typing.EventStart:
				return h.registry.Send(sessionID, message.TypingIndicator(true, profile.Name))
			case typing.EventProgress:
				return h.registry.Send(sessionID, message.TypingProgress(ev.Progress, ev.Remaining))
			}
			// The stop signal is replaced by the indicator sent after the
			// final chunk below.
			return nil
		})
	}()

	err := h.typing.StreamChunks(ctx, chunks, typing.ChunkBySentence, func(ev typing.Event) error {
		return h.registry.Send(sessionID, message.AgentMessage(ev.Chunk, profile.Name, ev.Final))
	})
	stopProgress()
	if err != nil {
		return
	}

	_ = h.registry.Send(sessionID, message.TypingIndicator(false, profile.Name))
}
