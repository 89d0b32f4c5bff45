// Package chat proxies conversations to the external LLM service.
//
// The backend holds no chat history; clients send the full message list on
// every request and the configured system prompt is prepended before the
// round trip. Two transports share the same client: plain request/response
// over /api/chat and a WebSocket session at /ws/chat that keeps the running
// message list server-side for the duration of the connection.
package chat
