package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"halalai/cmd/internal/auth/token"
)

const (
	wsSubprotocol = "halalai.chat.v1"

	wsDefaultWriteTimeout = 10 * time.Second
	wsDefaultReadIdle     = 5 * time.Minute
	wsMaxFrameBytes       = 64 << 10

	wsHeartbeatEvery   = 30 * time.Second
	wsHeartbeatTimeout = 5 * time.Second
	wsMaxPingFailures  = 3

	// Server-side history cap per connection; oldest turns fall off.
	wsMaxHistoryTurns = 64

	wsDefaultOriginRequired = true
	wsDefaultAllowedOrigins = "http://localhost,http://127.0.0.1"
)

// Inbound frame: one user turn.
type wsUserMessage struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Outbound frame: the assistant's answer to one turn.
type wsReply struct {
	Type    string    `json:"type"`
	ID      string    `json:"id"`
	ReplyTo string    `json:"reply_to"`
	Reply   string    `json:"reply"`
	Model   string    `json:"model"`
	TS      time.Time `json:"ts"`
}

type wsError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WSGateway is the WebSocket entrypoint for streaming chat. Each
// connection is authenticated once at upgrade via a bearer token in the
// query string and then carries its own conversation history.
type WSGateway struct {
	log    *slog.Logger
	client *Client
	tokens *token.Service

	originRequired bool
	allowedOrigins []string
	originPatterns []string

	writeTimeout    time.Duration
	readIdleTimeout time.Duration
}

// NewWSGateway constructs a gateway with secure defaults.
func NewWSGateway(log *slog.Logger, client *Client, tokens *token.Service) (*WSGateway, error) {
	if client == nil || tokens == nil {
		return nil, errors.New("chat: nil ws gateway collaborator")
	}
	if log == nil {
		log = slog.Default()
	}

	g := &WSGateway{log: log, client: client, tokens: tokens}

	g.originRequired = envBoolWS("HALALAI_WS_ORIGIN_REQUIRED", wsDefaultOriginRequired)
	g.allowedOrigins = envCSVWS("HALALAI_WS_ALLOWED_ORIGINS", wsDefaultAllowedOrigins)

	// websocket.Accept enforces its own origin policy: same-host is ok,
	// cross-origin requires OriginPatterns. Derive the patterns from the
	// allowlist so the two layers agree.
	g.originPatterns = deriveOriginPatterns(g.allowedOrigins)

	g.writeTimeout = envDuration("HALALAI_WS_WRITE_TIMEOUT", wsDefaultWriteTimeout)
	g.readIdleTimeout = envDuration("HALALAI_WS_READ_IDLE_TIMEOUT", wsDefaultReadIdle)

	return g, nil
}

// ServeHTTP adapter so the gateway can be mounted as http.Handler.
func (g *WSGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.HandleWS(w, r)
}

// HandleWS upgrades the request and runs the chat loop until the peer
// disconnects or the connection idles out.
func (g *WSGateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	if err := g.enforceOrigin(r); err != nil {
		g.log.Info("ws.reject.origin", "err", err, "origin", r.Header.Get("Origin"), "remote", r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	// Strict validation before the upgrade; expired tokens do not get a
	// socket.
	subject, err := g.tokens.Subject(strings.TrimSpace(r.URL.Query().Get("token")))
	if err != nil {
		g.log.Info("ws.reject.token", "err", err, "remote", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{wsSubprotocol},
		OriginPatterns: g.originPatterns,
	})
	if err != nil {
		g.log.Error("ws.accept.fail", "err", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	if sp := conn.Subprotocol(); sp != wsSubprotocol {
		g.log.Info("ws.reject.subprotocol", "got", sp, "want", wsSubprotocol)
		_ = conn.Close(websocket.StatusProtocolError, "subprotocol required")
		return
	}

	conn.SetReadLimit(wsMaxFrameBytes)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var closeOnce sync.Once
	shutdown := func(code websocket.StatusCode, reason string) {
		closeOnce.Do(func() {
			_ = conn.Close(code, reason)
			cancel()
		})
	}

	heartbeatDone := make(chan struct{})
	go func() {
		defer close(heartbeatDone)

		t := time.NewTicker(wsHeartbeatEvery)
		defer t.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				hbCtx, hbCancel := context.WithTimeout(ctx, wsHeartbeatTimeout)
				err := conn.Ping(hbCtx)
				hbCancel()

				if err != nil {
					failures++
					if failures >= wsMaxPingFailures {
						shutdown(websocket.StatusGoingAway, "heartbeat failed")
						return
					}
					continue
				}
				failures = 0
			}
		}
	}()

	g.log.Info("ws.session.start", "subject", subject, "remote", r.RemoteAddr)

	var history []Message

readLoop:
	for {
		readCtx, readCancel := context.WithTimeout(ctx, g.readIdleTimeout)
		msg, err := readUserMessage(readCtx, conn)
		readCancel()

		if err != nil {
			switch classifyReadErr(err) {
			case readErrClose, readErrCtxDone, readErrConnClosed:
				shutdown(websocket.StatusNormalClosure, "session over")
				break readLoop
			case readErrBadJSON:
				g.trySendError(ctx, conn, "bad_json", "invalid JSON")
				continue readLoop
			default:
				g.log.Info("ws.read.fail", "subject", subject, "err", err)
				shutdown(websocket.StatusAbnormalClosure, "read failed")
				break readLoop
			}
		}

		text := strings.TrimSpace(msg.Text)
		if text == "" {
			g.trySendError(ctx, conn, "empty_text", "text must not be empty")
			continue readLoop
		}

		history = append(history, Message{Role: RoleUser, Content: text})
		history = trimHistory(history)

		out, err := g.client.Complete(ctx, CompleteInput{Messages: history})
		if err != nil {
			// The failed turn is removed so a retry does not duplicate it.
			history = history[:len(history)-1]
			switch {
			case errors.Is(err, ErrUnavailable):
				g.trySendError(ctx, conn, "llm_unavailable", "llm service not ready")
			default:
				g.log.Error("ws.complete.fail", "subject", subject, "err", err)
				g.trySendError(ctx, conn, "llm_error", "llm service error")
			}
			continue readLoop
		}
		history = append(history, Message{Role: RoleAssistant, Content: out.Reply})

		reply := wsReply{
			Type:    "reply",
			ID:      uuid.NewString(),
			ReplyTo: msg.ID,
			Reply:   out.Reply,
			Model:   out.Model,
			TS:      time.Now().UTC(),
		}
		if err := writeFrame(ctx, conn, reply, g.writeTimeout); err != nil {
			g.log.Info("ws.write.fail", "subject", subject, "err", err)
			shutdown(websocket.StatusAbnormalClosure, "write failed")
			break readLoop
		}
	}

	shutdown(websocket.StatusNormalClosure, "bye")
	<-heartbeatDone
	g.log.Info("ws.session.end", "subject", subject)
}

func trimHistory(h []Message) []Message {
	if len(h) <= wsMaxHistoryTurns {
		return h
	}
	return h[len(h)-wsMaxHistoryTurns:]
}

// ---- frame IO ----

func readUserMessage(ctx context.Context, conn *websocket.Conn) (wsUserMessage, error) {
	mt, data, err := conn.Read(ctx)
	if err != nil {
		return wsUserMessage{}, err
	}
	if mt != websocket.MessageText {
		return wsUserMessage{}, fmt.Errorf("unsupported message type: %v", mt)
	}
	var msg wsUserMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return wsUserMessage{}, err
	}
	return msg, nil
}

func writeFrame(parent context.Context, conn *websocket.Conn, v any, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, b)
}

func (g *WSGateway) trySendError(ctx context.Context, conn *websocket.Conn, code, msg string) {
	_ = writeFrame(ctx, conn, wsError{Type: "error", Code: code, Message: msg}, g.writeTimeout)
}

// ---- read error classification ----

type readErrKind uint8

const (
	readErrUnknown readErrKind = iota
	readErrClose
	readErrCtxDone
	readErrConnClosed
	readErrBadJSON
)

func classifyReadErr(err error) readErrKind {
	if websocket.CloseStatus(err) != -1 {
		return readErrClose
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return readErrCtxDone
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		return readErrConnClosed
	}

	var jsonErr *json.SyntaxError
	if errors.As(err, &jsonErr) {
		return readErrBadJSON
	}
	s := err.Error()
	if strings.Contains(s, "unexpected end of JSON input") || strings.Contains(s, "invalid character") {
		return readErrBadJSON
	}
	return readErrUnknown
}

// ---- origin policy ----

func (g *WSGateway) enforceOrigin(r *http.Request) error {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		if g.originRequired {
			return errors.New("missing origin")
		}
		return nil
	}

	if len(g.allowedOrigins) == 0 {
		return errors.New("origin not allowed (no allowlist)")
	}

	originHost := originHostOnly(origin)

	for _, a := range g.allowedOrigins {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if a == "*" {
			return nil
		}
		if origin == a {
			return nil
		}
		if originHost != "" && originHost == originHostOnly(a) {
			return nil
		}
	}

	return fmt.Errorf("origin not allowed: %s", origin)
}

func originHostOnly(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		h := strings.TrimSpace(u.Host)
		if h == "" {
			return ""
		}
		if host, _, err := net.SplitHostPort(h); err == nil {
			return strings.ToLower(host)
		}
		return strings.ToLower(h)
	}

	if host, _, err := net.SplitHostPort(s); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(s)
}

func deriveOriginPatterns(allowed []string) []string {
	seen := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		h := originHostOnly(a)
		if h == "" || h == "*" {
			continue
		}
		seen[h] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}

	// Stable in-file sort (avoid importing sort just for this).
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j] < out[i] {
				out[i], out[j] = out[j], out[i]
			}
		}
	}

	return out
}

// ---- env helpers ----

func envBoolWS(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return def
	}
}

func envCSVWS(key string, def string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		raw = def
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
