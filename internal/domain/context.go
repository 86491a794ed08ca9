package domain

import "context"

type principalKey struct{}

// WithPrincipal stores the caller identity on ctx.
func WithPrincipal(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, principalKey{}, name)
}

// PrincipalFrom returns the caller identity stored on ctx, or "".
func PrincipalFrom(ctx context.Context) string {
	name, _ := ctx.Value(principalKey{}).(string)
	return name
}
