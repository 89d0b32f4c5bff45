// Package main provides a CI-friendly WebSocket smoke test for the Halal AI
// chat gateway.
//
// It validates:
//   - login over HTTP to obtain a session token
//   - handshake + subprotocol selection with the token in the query string
//   - send -> reply correlation via reply_to
//   - empty text rejected with an in-band error frame
//   - expired/garbage token rejected before the upgrade
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
)

const (
	subprotocol  = "halalai.chat.v1"
	maxReadBytes = 64 << 10
)

type wsUserMessage struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type wsServerFrame struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	ReplyTo string `json:"reply_to"`
	Reply   string `json:"reply"`
	Model   string `json:"model"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func main() {
	var (
		baseURL  = flag.String("base", "http://127.0.0.1:8080", "HTTP base URL of the server")
		wsURL    = flag.String("url", "ws://127.0.0.1:8080/ws/chat", "WebSocket URL of the chat gateway")
		origin   = flag.String("origin", "http://localhost", "Origin header to send (browser-like WS handshake)")
		user     = flag.String("user", "smoke", "Username or email to log in with")
		password = flag.String("password", "", "Password for the smoke account")
		text     = flag.String("text", "As-salamu alaykum", "Message text to send")
		timeout  = flag.Duration("timeout", 30*time.Second, "Per-step timeout")
		verbose  = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateWSURL(*wsURL); err != nil {
		fatalf("invalid -url: %v", err)
	}
	if *password == "" {
		fatalf("-password is required")
	}

	root := context.Background()

	tok := mustLogin(root, *baseURL, *user, *password, *timeout)
	if *verbose {
		fmt.Printf("logged in as %q, token length=%d\n", *user, len(tok))
	}

	mustRejectBadToken(root, *wsURL, *origin, *timeout)

	conn := mustConnect(root, *wsURL, *origin, tok, *timeout)
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	msgID := fmt.Sprintf("smoke-%d", time.Now().UnixNano())
	reply := mustSendAndRead(root, conn, wsUserMessage{ID: msgID, Text: *text}, *timeout)
	if reply.Type != "reply" {
		fatalf("expected reply frame, got type=%q code=%q msg=%q", reply.Type, reply.Code, reply.Message)
	}
	if reply.ReplyTo != msgID {
		fatalf("reply_to mismatch: got=%q want=%q", reply.ReplyTo, msgID)
	}
	if strings.TrimSpace(reply.Reply) == "" {
		fatalf("empty reply text")
	}

	errFrame := mustSendAndRead(root, conn, wsUserMessage{ID: "smoke-empty", Text: "   "}, *timeout)
	if errFrame.Type != "error" || errFrame.Code != "empty_text" {
		fatalf("expected empty_text error, got type=%q code=%q", errFrame.Type, errFrame.Code)
	}

	fmt.Printf("OK: user=%s model=%s reply_bytes=%d\n", *user, reply.Model, len(reply.Reply))
}

func validateWSURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	if strings.TrimSpace(u.Path) == "" {
		return errors.New("missing path")
	}
	return nil
}

func mustLogin(parent context.Context, baseURL, user, password string, stepTimeout time.Duration) string {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{
		"usernameOrEmail": user,
		"password":        password,
	})
	if err != nil {
		fatalf("marshal login body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		fatalf("build login request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fatalf("login status=%d (user %q)", resp.StatusCode, user)
	}

	var out struct {
		Token string `json:"token"`
		Type  string `json:"type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fatalf("decode login response: %v", err)
	}
	if strings.TrimSpace(out.Token) == "" {
		fatalf("login response missing token")
	}
	if out.Type != "Bearer" {
		fatalf("unexpected token type: %q", out.Type)
	}
	return out.Token
}

func mustRejectBadToken(parent context.Context, wsURL, origin string, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	conn, resp, err := websocket.Dial(ctx, withToken(wsURL, "not-a-token"), dialOptions(origin))
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err == nil {
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
		fatalf("gateway accepted a garbage token")
	}
	if resp != nil && resp.StatusCode != http.StatusUnauthorized {
		fatalf("garbage token: status=%d want=401", resp.StatusCode)
	}
}

func mustConnect(parent context.Context, wsURL, origin, tok string, stepTimeout time.Duration) *websocket.Conn {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	conn, resp, err := websocket.Dial(ctx, withToken(wsURL, tok), dialOptions(origin))
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fatalf("connect: %v", err)
	}

	if sp := conn.Subprotocol(); sp != subprotocol {
		fatalf("subprotocol mismatch: got=%q want=%q", sp, subprotocol)
	}

	conn.SetReadLimit(maxReadBytes)
	return conn
}

func dialOptions(origin string) *websocket.DialOptions {
	h := http.Header{}
	if strings.TrimSpace(origin) != "" {
		h.Set("Origin", origin)
	}
	return &websocket.DialOptions{
		Subprotocols: []string{subprotocol},
		HTTPHeader:   h,
	}
}

func withToken(wsURL, tok string) string {
	u, err := url.Parse(wsURL)
	if err != nil {
		fatalf("parse ws url: %v", err)
	}
	q := u.Query()
	q.Set("token", tok)
	u.RawQuery = q.Encode()
	return u.String()
}

func mustSendAndRead(parent context.Context, conn *websocket.Conn, msg wsUserMessage, stepTimeout time.Duration) wsServerFrame {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	b, err := json.Marshal(msg)
	if err != nil {
		fatalf("marshal message: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		fatalf("write failed: %v", err)
	}

	mt, data, err := conn.Read(ctx)
	if err != nil {
		fatalf("read failed: %v", err)
	}
	if mt != websocket.MessageText {
		fatalf("unsupported message type: %v", mt)
	}

	var frame wsServerFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		fatalf("bad frame json: %v", err)
	}
	return frame
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
