// Package ctxkeys stores the request scoped values the middleware chain hands
// to handlers and page components.
package ctxkeys

import (
	"context"

	"github.com/fitlg/fitlg/internal/config"
	"github.com/fitlg/fitlg/internal/model"
)

// key is unexported so only this package can set or read the values.
type key struct{ name string }

var (
	userKey      = key{"user"}
	urlPathKey   = key{"url_path"}
	configKey    = key{"config"}
	csrfTokenKey = key{"csrf_token"}
)

func value[T any](ctx context.Context, k key) T {
	v, _ := ctx.Value(k).(T)
	return v
}

// User is the signed in user, nil for guests.
func User(ctx context.Context) *model.User { return value[*model.User](ctx, userKey) }

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// URLPath drives the active entry of the navigation bar.
func URLPath(ctx context.Context) string { return value[string](ctx, urlPathKey) }

func WithURLPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, urlPathKey, path)
}

func Config(ctx context.Context) *config.Config { return value[*config.Config](ctx, configKey) }

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

func CSRFToken(ctx context.Context) string { return value[string](ctx, csrfTokenKey) }

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfTokenKey, token)
}
