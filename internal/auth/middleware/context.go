package auth

import "context"

type ctxKey string

const ctxKeyPage ctxKey = "page"

func WithPage(ctx context.Context, pageID string) context.Context {
	return context.WithValue(ctx, ctxKeyPage, pageID)
}

// PageFromContext returns the page id a verified token was issued for.
func PageFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPage); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
