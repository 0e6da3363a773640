package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/estateadmin/internal/auth"
	"github.com/JonMunkholm/estateadmin/internal/core"
)

// actorContext tags the request context with the acting user so the import
// history records who ran an import.
func actorContext(r *http.Request) context.Context {
	ctx := r.Context()
	if p, ok := auth.FromContext(ctx); ok {
		ctx = core.ContextWithActor(ctx, p.UserID)
	}
	return ctx
}
