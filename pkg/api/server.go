package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Create a transaction and authorize the buyer's payment
	// (POST /transactions)
	CreateTransaction(w http.ResponseWriter, r *http.Request)
	// List a user's transactions
	// (GET /transactions)
	ListTransactions(w http.ResponseWriter, r *http.Request, params ListTransactionsParams)
	// (GET /transactions/{transactionId})
	GetTransaction(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (GET /transactions/{transactionId}/events)
	ListTransactionEvents(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (GET /transactions/{transactionId}/dispute)
	GetTransactionDispute(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (POST /transactions/{transactionId}/request-release)
	RequestRelease(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (POST /transactions/{transactionId}/ship)
	MarkShipped(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (POST /transactions/{transactionId}/confirm-release)
	ConfirmRelease(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (POST /transactions/{transactionId}/refund)
	RefundTransaction(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (POST /transactions/{transactionId}/dispute)
	OpenDispute(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (POST /transactions/{transactionId}/admin/resolve-dispute)
	ResolveDispute(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (POST /transactions/{transactionId}/start-rental)
	StartRental(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (POST /transactions/{transactionId}/complete-rental)
	CompleteRental(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (POST /transactions/{transactionId}/report-damage)
	ReportDamage(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (POST /transactions/{transactionId}/deduct-damage)
	DeductDamage(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// (POST /transactions/{transactionId}/finalize-refund)
	FinalizeRefund(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID)
	// Receive a payment processor notification
	// (POST /webhooks/stripe)
	ReceiveStripeWebhook(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

// InvalidParamFormatError is passed to the error handler when a parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// RequiredParamError is passed to the error handler when a required query parameter is missing.
type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("Query argument %s is required, but not found", e.ParamName)
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, handler http.Handler) {
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// CreateTransaction operation middleware
func (siw *ServerInterfaceWrapper) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.CreateTransaction))
}

// ListTransactions operation middleware
func (siw *ServerInterfaceWrapper) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var params ListTransactionsParams

	if paramValue := r.URL.Query().Get("user_id"); paramValue == "" {
		siw.ErrorHandlerFunc(w, r, &RequiredParamError{ParamName: "user_id"})
		return
	}
	err := runtime.BindQueryParameter("form", true, true, "user_id", r.URL.Query(), &params.UserId)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "user_id", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListTransactions(w, r, params)
	}))
}

// ReceiveStripeWebhook operation middleware
func (siw *ServerInterfaceWrapper) ReceiveStripeWebhook(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.ReceiveStripeWebhook))
}

// withTransactionID binds the transactionId path parameter before calling op.
func (siw *ServerInterfaceWrapper) withTransactionID(op func(http.ResponseWriter, *http.Request, openapi_types.UUID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var transactionId openapi_types.UUID

		err := runtime.BindStyledParameterWithOptions("simple", "transactionId", chi.URLParam(r, "transactionId"), &transactionId,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "transactionId", Err: err})
			return
		}

		siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op(w, r, transactionId)
		}))
	}
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching the API, mounted on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{BaseRouter: r})
}

// HandlerWithOptions creates http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}
	base := options.BaseURL

	r.Group(func(r chi.Router) {
		r.Post(base+"/transactions", wrapper.CreateTransaction)
		r.Get(base+"/transactions", wrapper.ListTransactions)
		r.Get(base+"/transactions/{transactionId}", wrapper.withTransactionID(si.GetTransaction))
		r.Get(base+"/transactions/{transactionId}/events", wrapper.withTransactionID(si.ListTransactionEvents))
		r.Get(base+"/transactions/{transactionId}/dispute", wrapper.withTransactionID(si.GetTransactionDispute))
		r.Post(base+"/transactions/{transactionId}/request-release", wrapper.withTransactionID(si.RequestRelease))
		r.Post(base+"/transactions/{transactionId}/ship", wrapper.withTransactionID(si.MarkShipped))
		r.Post(base+"/transactions/{transactionId}/confirm-release", wrapper.withTransactionID(si.ConfirmRelease))
		r.Post(base+"/transactions/{transactionId}/refund", wrapper.withTransactionID(si.RefundTransaction))
		r.Post(base+"/transactions/{transactionId}/dispute", wrapper.withTransactionID(si.OpenDispute))
		r.Post(base+"/transactions/{transactionId}/admin/resolve-dispute", wrapper.withTransactionID(si.ResolveDispute))
		r.Post(base+"/transactions/{transactionId}/start-rental", wrapper.withTransactionID(si.StartRental))
		r.Post(base+"/transactions/{transactionId}/complete-rental", wrapper.withTransactionID(si.CompleteRental))
		r.Post(base+"/transactions/{transactionId}/report-damage", wrapper.withTransactionID(si.ReportDamage))
		r.Post(base+"/transactions/{transactionId}/deduct-damage", wrapper.withTransactionID(si.DeductDamage))
		r.Post(base+"/transactions/{transactionId}/finalize-refund", wrapper.withTransactionID(si.FinalizeRefund))
		r.Post(base+"/webhooks/stripe", wrapper.ReceiveStripeWebhook)
	})

	return r
}
