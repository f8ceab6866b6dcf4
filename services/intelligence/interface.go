package intelligence

import (
	"context"

	"cropconnect/models"
)

// AssistantService is the farming chat assistant.
type AssistantService interface {
	Chat(ctx context.Context, userID, message string) (*models.AIResponse, error)
	Reset(ctx context.Context, userID string) error
}

// ContextStore persists the most recent conversation turns per user, oldest first.
type ContextStore interface {
	History(ctx context.Context, userID string) ([]models.AITurn, error)
	Append(ctx context.Context, userID string, turns ...models.AITurn) error
	Clear(ctx context.Context, userID string) error
}

// ChatModel produces the assistant's next reply.
type ChatModel interface {
	Reply(ctx context.Context, history []models.AITurn, message string) (string, error)
}
