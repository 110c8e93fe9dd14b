package chat

// ChatRequest is a question answered from the knowledge base
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}
