package models

// Role identifies the speaker of an LLMMessage.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// LLMMessage is one turn of a chat-completion conversation. ImageBase64 and
// ImageMimeType are set together or both left empty.
type LLMMessage struct {
	Role          Role
	Content       string
	ImageBase64   string
	ImageMimeType string
}

// HasImage reports whether this message carries an inline image attachment.
func (m LLMMessage) HasImage() bool {
	return m.ImageBase64 != "" && m.ImageMimeType != ""
}
