package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chris/marketplace-escrow/pkg/api"
	"github.com/chris/marketplace-escrow/pkg/escrow"
	"github.com/chris/marketplace-escrow/pkg/handlers/events"
	"github.com/chris/marketplace-escrow/pkg/handlers/respond"
	"github.com/chris/marketplace-escrow/pkg/handlers/transactions"
	"github.com/chris/marketplace-escrow/pkg/handlers/webhooks"
	"github.com/chris/marketplace-escrow/pkg/middleware"
	"github.com/chris/marketplace-escrow/pkg/storage"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ApiHandler implements the generated server interface.
// It composes the per-resource handlers.
type ApiHandler struct {
	*transactions.TransactionsHandler
	*events.EventsHandler
	*webhooks.WebhooksHandler
}

// NewApiHandler wires the orchestrator, the read side of the store and the
// webhook reconciler into one handler.
func NewApiHandler(service escrow.Service, store storage.ApiStore, rec webhooks.Reconciler, logger *slog.Logger) *ApiHandler {
	return &ApiHandler{
		TransactionsHandler: transactions.NewTransactionsHandler(service, store, logger),
		EventsHandler:       events.NewEventsHandler(store),
		WebhooksHandler:     webhooks.NewWebhooksHandler(rec, logger),
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// NewRouter mounts the API with request ids, panic recovery, access logs and
// caller identity, next to the health and metrics endpoints.
func NewRouter(h api.ServerInterface, logger *slog.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.NewStructuredLogger(logger))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.Actor)
		api.HandlerWithOptions(h, api.ChiServerOptions{
			BaseRouter: r,
			ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
				respond.Error(w, fmt.Errorf("%w: %v", escrow.ErrInvalidInput, err))
			},
		})
	})
	return router
}
