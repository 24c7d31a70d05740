// Package api assembles the HTTP routes and middleware of the API server.
package api

import (
	"net/http"
	"time"

	"github.com/dvloznov/moneyflow/internal/api/handlers"
	"github.com/dvloznov/moneyflow/internal/api/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Handlers groups the endpoint handlers served by the router.
type Handlers struct {
	Statements    *handlers.StatementsHandler
	Jobs          *handlers.JobsHandler
	Goals         *handlers.GoalsHandler
	Funds         *handlers.FundsHandler
	Notifications *handlers.NotificationsHandler
	Profile       *handlers.ProfileHandler
	Expenses      *handlers.ExpensesHandler
}

// NewRouter registers every route and wraps the router in the middleware
// chain Recovery, Logger, RequestID, CORS, Auth (outermost first).
func NewRouter(h Handlers, log zerolog.Logger) http.Handler {
	r := mux.NewRouter().StrictSlash(true)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/statements/preview", h.Statements.Preview).Methods(http.MethodPost)
	api.HandleFunc("/statements/upload", h.Statements.Upload).Methods(http.MethodPost)
	api.HandleFunc("/statements/ingest", h.Statements.Ingest).Methods(http.MethodPost)
	api.HandleFunc("/categorize", h.Statements.Categorize).Methods(http.MethodPost)

	api.HandleFunc("/jobs", h.Jobs.ListJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", h.Jobs.GetJob).Methods(http.MethodGet)

	api.HandleFunc("/goals", h.Goals.ListGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals", h.Goals.CreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/goals/{id}/contributions", h.Goals.AddContribution).Methods(http.MethodPost)

	api.HandleFunc("/funds", h.Funds.ListFunds).Methods(http.MethodGet)
	api.HandleFunc("/funds", h.Funds.CreateFund).Methods(http.MethodPost)
	api.HandleFunc("/funds/{id}/contributions", h.Funds.AddContribution).Methods(http.MethodPost)

	api.HandleFunc("/notifications", h.Notifications.ListNotifications).Methods(http.MethodGet)

	api.HandleFunc("/expenses", h.Expenses.ListExpenses).Methods(http.MethodGet)

	api.HandleFunc("/profile", h.Profile.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", h.Profile.PutProfile).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(r),
				),
			),
		),
	)
}
