package chat

// Message is one turn of a conversation, in the wire shape the LLM
// service expects.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Completion is the LLM service's answer to a chat round trip.
type Completion struct {
	Reply       string `json:"reply"`
	Model       string `json:"model"`
	UsedRemote  bool   `json:"used_remote"`
	RemoteError string `json:"remote_error,omitempty"`
}

// ModelInfo describes what the LLM service can run.
type ModelInfo struct {
	DefaultModel  string   `json:"default_model"`
	AllowedModels []string `json:"allowed_models"`
}
