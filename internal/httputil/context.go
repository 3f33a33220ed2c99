package httputil

import (
	"context"
	"net/http"
)

type userIDKey struct{}

type userSlotKey struct{}

// userSlot lets an outer middleware see the user an inner one authenticated
type userSlot struct{ id string }

// TrackUser returns r carrying a slot that later WithUserID calls fill in,
// and a func reporting the user ID recorded there
func TrackUser(r *http.Request) (*http.Request, func() string) {
	slot := &userSlot{}
	ctx := context.WithValue(r.Context(), userSlotKey{}, slot)
	return r.WithContext(ctx), func() string { return slot.id }
}

// ContextWithUserID returns ctx carrying the authenticated user's ID
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user ID carried by ctx, or "" for anonymous readers
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey{}).(string)
	return userID
}

// WithUserID returns r with userID on its context
func WithUserID(r *http.Request, userID string) *http.Request {
	if slot, ok := r.Context().Value(userSlotKey{}).(*userSlot); ok {
		slot.id = userID
	}
	return r.WithContext(ContextWithUserID(r.Context(), userID))
}

// GetUserID returns the user ID on the request, or "" for anonymous readers
func GetUserID(r *http.Request) string {
	return UserIDFromContext(r.Context())
}
