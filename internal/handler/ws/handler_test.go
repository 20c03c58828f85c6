package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"github.com/avelier/decoychat/internal/model/decoy"
	"github.com/avelier/decoychat/internal/model/message"
	"github.com/avelier/decoychat/internal/service/admission"
	"github.com/avelier/decoychat/internal/service/agent"
	"github.com/avelier/decoychat/internal/service/auth"
	"github.com/avelier/decoychat/internal/service/history"
	"github.com/avelier/decoychat/internal/service/liveness"
	localeservice "github.com/avelier/decoychat/internal/service/locale"
	"github.com/avelier/decoychat/internal/service/registry"
	"github.com/avelier/decoychat/internal/service/typing"
)

type testEnv struct {
	server   *httptest.Server
	registry *registry.Registry
	history  *history.MemoryStore
}

type envOption func(*envConfig)

type envConfig struct {
	maxSessions int
	burst       float64
	verifier    auth.Verifier
}

func withMaxSessions(n int) envOption { return func(c *envConfig) { c.maxSessions = n } }
func withBurst(n float64) envOption   { return func(c *envConfig) { c.burst = n } }
func withVerifier(v auth.Verifier) envOption {
	return func(c *envConfig) { c.verifier = v }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := envConfig{maxSessions: 10, burst: 100}
	for _, opt := range opts {
		opt(&cfg)
	}

	reg := registry.New(registry.Config{MaxSessions: cfg.maxSessions})
	limiter := admission.New(admission.Config{BurstCapacity: cfg.burst})
	// Tight delay bounds keep paced delivery fast in tests.
	engine := typing.NewEngine(typing.WithDelayBounds(0.001, 0.01))
	resolver := localeservice.NewResolver("")
	monitor := liveness.New(reg, 50*time.Millisecond)
	hist := history.NewMemoryStore()

	h := New(reg, limiter, engine, resolver, decoy.NewMemoryStore(decoy.Seed()), hist,
		agent.NewScriptedResponder(), cfg.verifier, monitor, 5*time.Second)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &testEnv{server: server, registry: reg, history: hist}
}

func (e *testEnv) dial(t *testing.T, query string) (*websocket.Conn, *http.Response) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", query, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn, resp
}

// readUntilType reads frames until one matches the wanted message type.
func readUntilType(t *testing.T, conn *websocket.Conn, want string) message.Envelope {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		var env message.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("reading for %s: %v", want, err)
		}
		if env.Type() == want {
			return env
		}
	}
	t.Fatalf("no %s message before deadline", want)
	return nil
}

func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var env message.Envelope
		err := conn.ReadJSON(&env)
		if err == nil {
			continue // drain non-close frames
		}
		if !websocket.IsCloseError(err, code) {
			t.Fatalf("got %v, want close code %d", err, code)
		}
		return
	}
}

func TestConnectHandshake(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.dial(t, "conversationKind=romance_scam&sessionId=ws-test-1&locale=es")

	confirm := readUntilType(t, conn, message.TypeConnectionEstablished)
	if confirm["session_id"] != "ws-test-1" {
		t.Fatalf("session_id = %v, want ws-test-1", confirm["session_id"])
	}
	if _, ok := confirm["timestamp"]; !ok {
		t.Fatal("confirmation missing timestamp")
	}

	sess, ok := env.registry.Get("ws-test-1")
	if !ok {
		t.Fatal("session not registered")
	}
	if sess.Locale.Locale != "es" {
		t.Fatalf("locale = %s, want es from query param", sess.Locale.Locale)
	}
}

func TestOpeningLineIsPaced(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.dial(t, "conversationKind=prize_scam")

	readUntilType(t, conn, message.TypeConnectionEstablished)

	indicator := readUntilType(t, conn, message.TypeTypingIndicator)
	if indicator["is_typing"] != true {
		t.Fatalf("first indicator = %v, want typing on", indicator["is_typing"])
	}

	msg := readUntilType(t, conn, message.TypeAgentMessage)
	if msg["agent_name"] != "Claims Desk" {
		t.Fatalf("agent_name = %v, want seeded prize decoy", msg["agent_name"])
	}
}

func TestPingPong(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.dial(t, "conversationKind=romance_scam")
	readUntilType(t, conn, message.TypeConnectionEstablished)

	if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	pong := readUntilType(t, conn, message.TypePong)
	if _, ok := pong["timestamp"]; !ok {
		t.Fatal("pong missing timestamp")
	}
}

func TestUserMessageGetsPacedReply(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.dial(t, "conversationKind=investment_scam&sessionId=reply-test")
	readUntilType(t, conn, message.TypeConnectionEstablished)

	if err := conn.WriteJSON(map[string]any{"type": "user_message", "content": "tell me more"}); err != nil {
		t.Fatalf("write user_message: %v", err)
	}

	// The reply streams chunk by chunk; the last chunk is flagged final. The
	// opening line also ends with a final chunk, so wait for the reply's own.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("no final reply chunk before deadline")
		}
		msg := readUntilType(t, conn, message.TypeAgentMessage)
		text, _ := msg["text"].(string)
		if msg["final"] == true && strings.Contains(text, "screenshots") {
			break
		}
	}

	transcript, _ := env.history.Transcript(context.Background(), "reply-test")
	var senders []string
	for _, m := range transcript {
		senders = append(senders, m.Sender)
	}
	// Opening line, user turn, agent reply.
	if len(transcript) != 3 || senders[1] != "user" || senders[2] != "agent" {
		t.Fatalf("transcript senders = %v", senders)
	}
}

func TestUnknownMessageTypeKeepsSessionOpen(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.dial(t, "conversationKind=romance_scam&sessionId=unknown-type")
	readUntilType(t, conn, message.TypeConnectionEstablished)

	if err := conn.WriteJSON(map[string]any{"type": "video_call"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	errEnv := readUntilType(t, conn, message.TypeError)
	if errEnv["error"] != "unknown_message_type" {
		t.Fatalf("error code = %v", errEnv["error"])
	}

	if !env.registry.IsConnected("unknown-type") {
		t.Fatal("session closed on unknown message type")
	}
}

func TestInvalidKindClosesPolicyViolation(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.dial(t, "conversationKind=pyramid_scheme")
	expectClose(t, conn, websocket.ClosePolicyViolation)
}

func TestInvalidLocaleClosesPolicyViolation(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := env.dial(t, "conversationKind=romance_scam&locale=tlh")
	expectClose(t, conn, websocket.ClosePolicyViolation)
}

func TestCapacityClosesTryAgainLater(t *testing.T) {
	env := newTestEnv(t, withMaxSessions(1))

	first, _ := env.dial(t, "conversationKind=romance_scam")
	readUntilType(t, first, message.TypeConnectionEstablished)

	second, _ := env.dial(t, "conversationKind=romance_scam")
	expectClose(t, second, websocket.CloseTryAgainLater)
}

func TestAdmissionDenialClosesTryAgainLater(t *testing.T) {
	env := newTestEnv(t, withBurst(1))

	first, _ := env.dial(t, "conversationKind=romance_scam")
	readUntilType(t, first, message.TypeConnectionEstablished)

	second, _ := env.dial(t, "conversationKind=romance_scam")
	denied := readUntilType(t, second, message.TypeError)
	if denied["error"] != "rate_limited" {
		t.Fatalf("error code = %v", denied["error"])
	}
	if _, ok := denied["retry_after"]; !ok {
		t.Fatal("denial missing retry_after")
	}
	expectClose(t, second, websocket.CloseTryAgainLater)
}

func TestCredentialRequired(t *testing.T) {
	env := newTestEnv(t, withVerifier(auth.NewJWTVerifier("ws-secret")))

	unauthenticated, _ := env.dial(t, "conversationKind=romance_scam")
	expectClose(t, unauthenticated, websocket.ClosePolicyViolation)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "trainee-7",
		"locale": "fr",
	}).SignedString([]byte("ws-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	conn, _ := env.dial(t, "conversationKind=romance_scam&sessionId=authed&token="+token)
	readUntilType(t, conn, message.TypeConnectionEstablished)

	sess, ok := env.registry.Get("authed")
	if !ok {
		t.Fatal("session not registered")
	}
	if sess.OwnerID != "trainee-7" {
		t.Fatalf("owner = %s, want subject claim", sess.OwnerID)
	}
	if sess.Locale.Locale != "fr" {
		t.Fatalf("locale = %s, want claim preference", sess.Locale.Locale)
	}
}

func TestDuplicateSessionIDReplacesConnection(t *testing.T) {
	env := newTestEnv(t)

	first, _ := env.dial(t, "conversationKind=romance_scam&sessionId=dup")
	readUntilType(t, first, message.TypeConnectionEstablished)

	second, _ := env.dial(t, "conversationKind=romance_scam&sessionId=dup")
	readUntilType(t, second, message.TypeConnectionEstablished)

	if env.registry.Count() != 1 {
		t.Fatalf("Count = %d, want 1 after replacement", env.registry.Count())
	}

	// The first connection is closed server-side.
	_ = first.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var frame message.Envelope
		if err := first.ReadJSON(&frame); err != nil {
			break
		}
	}

	// The replaced handler's exit must not tear down the replacement; give
	// its deferred teardown time to run, then confirm the session still works.
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if !env.registry.IsConnected("dup") {
			t.Fatal("replacement session removed after prior handler exited")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := second.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	readUntilType(t, second, message.TypePong)
}
