package chat

// ChatResponse carries the generated answer
type ChatResponse struct {
	Response string `json:"response"`
}
