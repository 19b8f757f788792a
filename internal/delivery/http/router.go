package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"explorewithme/internal/delivery/http/controllers"
	"explorewithme/internal/delivery/http/middleware"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Events       *controllers.EventController
	Requests     *controllers.RequestController
	Users        *controllers.UserController
	Categories   *controllers.CategoryController
	Compilations *controllers.CompilationController
	Comments     *controllers.CommentController
}

// NewRouter initializes the HTTP router with all application routes and
// wraps it in the request-id, logging, and CORS middleware.
func NewRouter(logger *slog.Logger, c Controllers, corsOrigins []string) http.Handler {
	mux := http.NewServeMux()

	// Initiator surface
	mux.HandleFunc("POST /users/{userId}/events", c.Events.Create)
	mux.HandleFunc("GET /users/{userId}/events", c.Events.ListByInitiator)
	mux.HandleFunc("GET /users/{userId}/events/{eventId}", c.Events.GetByInitiator)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}", c.Events.UpdateByInitiator)
	mux.HandleFunc("GET /users/{userId}/events/{eventId}/requests", c.Requests.ListForEvent)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}/requests", c.Requests.UpdateStatus)

	// Requester surface
	mux.HandleFunc("POST /users/{userId}/requests", c.Requests.Create)
	mux.HandleFunc("GET /users/{userId}/requests", c.Requests.ListByRequester)
	mux.HandleFunc("PATCH /users/{userId}/requests/{requestId}/cancel", c.Requests.Cancel)

	// Comments
	mux.HandleFunc("POST /users/{userId}/events/{eventId}/comments", c.Comments.Create)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}/comments/{commentId}", c.Comments.Update)
	mux.HandleFunc("DELETE /users/{userId}/events/{eventId}/comments/{commentId}", c.Comments.Delete)
	mux.HandleFunc("GET /events/{eventId}/comments", c.Comments.ListByEvent)
	mux.HandleFunc("GET /events/{eventId}/comments/{commentId}", c.Comments.Get)

	// Admin surface
	mux.HandleFunc("GET /admin/events", c.Events.AdminSearch)
	mux.HandleFunc("PATCH /admin/events/{eventId}", c.Events.UpdateByAdmin)
	mux.HandleFunc("DELETE /admin/events/{eventId}/comments/{commentId}", c.Comments.AdminDelete)
	mux.HandleFunc("POST /admin/users", c.Users.Create)
	mux.HandleFunc("GET /admin/users", c.Users.List)
	mux.HandleFunc("DELETE /admin/users/{userId}", c.Users.Delete)
	mux.HandleFunc("POST /admin/categories", c.Categories.Create)
	mux.HandleFunc("PATCH /admin/categories/{catId}", c.Categories.Update)
	mux.HandleFunc("DELETE /admin/categories/{catId}", c.Categories.Delete)
	mux.HandleFunc("POST /admin/compilations", c.Compilations.Create)
	mux.HandleFunc("PATCH /admin/compilations/{compId}", c.Compilations.Update)
	mux.HandleFunc("DELETE /admin/compilations/{compId}", c.Compilations.Delete)

	// Public surface
	mux.HandleFunc("GET /events", c.Events.PublicSearch)
	mux.HandleFunc("GET /events/{eventId}", c.Events.GetPublished)
	mux.HandleFunc("GET /categories", c.Categories.List)
	mux.HandleFunc("GET /categories/{catId}", c.Categories.Get)
	mux.HandleFunc("GET /compilations", c.Compilations.List)
	mux.HandleFunc("GET /compilations/{compId}", c.Compilations.Get)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.CORS(corsOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.RequestID(handler)
	return handler
}
