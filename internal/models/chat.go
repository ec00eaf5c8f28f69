package models

// ChatMessage is a single message of a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the relay request body.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatChoice is one completion choice.
type ChatChoice struct {
	Message ChatMessage `json:"message"`
}

// ChatResponse is the fixed envelope returned by the relay.
type ChatResponse struct {
	Choices []ChatChoice `json:"choices"`
}

// Reply returns the content of the first choice, or "" if there is none.
func (r ChatResponse) Reply() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}
