package identity

import "context"

type accessTokenKey struct{}

// WithAccessToken binds the caller's bearer token to ctx. LocalClient reads
// it to answer GetSession, GetUser and SignOut.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}
