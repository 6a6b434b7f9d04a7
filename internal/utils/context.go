package utils

import "context"

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserPhoneKey contextKey = "phone"
)

// SetUserContext sets the authenticated user's identity into context (called by middleware).
func SetUserContext(ctx context.Context, id string, phone string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	ctx = context.WithValue(ctx, UserPhoneKey, phone)
	return ctx
}

// GetUserIDFromContext retrieves the caller's user id safely.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func GetUserPhoneFromContext(ctx context.Context) string {
	phone, _ := ctx.Value(UserPhoneKey).(string)
	return phone
}
