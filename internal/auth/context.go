package auth

import "context"

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const credentialKey ctxKey = iota

// WithCredential adds the authenticated API key to the context.
func WithCredential(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, credentialKey, key)
}

// CredentialFromContext retrieves the authenticated API key from context.
// Returns an empty string if the request was not authenticated.
func CredentialFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(credentialKey).(string); ok {
		return v
	}
	return ""
}
