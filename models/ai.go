package models

import "time"

// AIRequest is the payload coming from the frontend into /api/ai/chat.
type AIRequest struct {
	Message string `json:"message" binding:"required"`
}

// AIResponse is the assistant's reply.
type AIResponse struct {
	Reply string `json:"reply"`
	Turns int    `json:"turns"`
}

// AITurn is one exchange kept in the conversation context.
type AITurn struct {
	Role string    `json:"role"` // "user" or "model"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}
