package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxKeyUserID      contextKey = "user_id"
	ctxKeyResponsible contextKey = "responsible"
)

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(uuid.UUID)
	return id, ok
}

func WithResponsible(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ctxKeyResponsible, name)
}

// ResponsibleFromContext returns the display name of the authenticated user.
// Mutation handlers use it as the default responsible party on movements.
func ResponsibleFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ctxKeyResponsible).(string)
	return name, ok && name != ""
}
