package intelligence

import (
	"context"
	"strings"
	"time"

	"cropconnect/models"
	"cropconnect/utils"

	"go.uber.org/zap"
)

// MaxTurns is how many turns of history are kept per user.
const MaxTurns = 20

// Assistant implements AssistantService. A nil Model means the assistant is not configured.
type Assistant struct {
	Store  ContextStore
	Model  ChatModel
	Logger *zap.Logger
	Now    func() time.Time
}

func (a *Assistant) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Assistant) Chat(ctx context.Context, userID, message string) (*models.AIResponse, error) {
	if a.Model == nil {
		return nil, utils.Validation("assistant not configured")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, utils.Validation("message is required")
	}

	history, err := a.Store.History(ctx, userID)
	if err != nil {
		return nil, utils.Internal("failed to load conversation", err)
	}

	reply, err := a.Model.Reply(ctx, history, message)
	if err != nil {
		a.Logger.Error("assistant reply failed", zap.String("userId", userID), zap.Error(err))
		return nil, utils.Internal("assistant is unavailable", err)
	}

	now := a.now()
	err = a.Store.Append(ctx, userID,
		models.AITurn{Role: "user", Text: message, At: now},
		models.AITurn{Role: "model", Text: reply, At: now},
	)
	if err != nil {
		a.Logger.Warn("conversation not saved", zap.String("userId", userID), zap.Error(err))
	}
	turns := len(history) + 2
	if turns > MaxTurns {
		turns = MaxTurns
	}
	return &models.AIResponse{Reply: reply, Turns: turns}, nil
}

func (a *Assistant) Reset(ctx context.Context, userID string) error {
	if err := a.Store.Clear(ctx, userID); err != nil {
		return utils.Internal("failed to clear conversation", err)
	}
	return nil
}
