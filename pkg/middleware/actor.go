package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/chris/marketplace-escrow/pkg/escrow"
)

// Identity headers set by the upstream identity service. The escrow service
// trusts them and never authenticates callers itself.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

type actorKey struct{}

// Actor reads the identity headers into the request context. Requests without
// an actor id pass through unauthenticated; SYSTEM is never accepted from
// the network.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderActorID))
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}
		var actor escrow.Actor
		switch strings.ToUpper(strings.TrimSpace(r.Header.Get(HeaderActorRole))) {
		case "", string(escrow.RoleUser):
			actor = escrow.User(id)
		case string(escrow.RoleAdmin):
			actor = escrow.Admin(id)
		default:
			http.Error(w, "unsupported actor role", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// WithActor stores actor in ctx.
func WithActor(ctx context.Context, actor escrow.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the caller stored by Actor.
func ActorFrom(ctx context.Context) (escrow.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(escrow.Actor)
	return actor, ok
}
