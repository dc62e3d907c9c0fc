package assistant

import "context"

type Message struct {
	Role    string // "user" | "assistant"
	Content string
}

// Client es el colaborador opaco de chat (LLM externo). El core no
// interpreta el contenido: request/response y nada más.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
