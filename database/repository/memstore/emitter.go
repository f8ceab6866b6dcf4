package memstore

import (
	"context"
	"sync"

	"cropconnect/models"
)

// Emitter records notification inputs synchronously instead of delivering them.
type Emitter struct {
	mu   sync.Mutex
	sent []models.NotificationInput
}

func (e *Emitter) Emit(_ context.Context, in models.NotificationInput) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, in)
}

// Sent returns everything emitted so far.
func (e *Emitter) Sent() []models.NotificationInput {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.NotificationInput(nil), e.sent...)
}

// To returns what was emitted to recipientID, optionally restricted to one type.
func (e *Emitter) To(recipientID string, typ models.NotificationType) []models.NotificationInput {
	var out []models.NotificationInput
	for _, in := range e.Sent() {
		if in.RecipientID == recipientID && (typ == "" || in.Type == typ) {
			out = append(out, in)
		}
	}
	return out
}

func (e *Emitter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = nil
}
