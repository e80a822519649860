package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sushihentaime/quillpress/internal/userservice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	// user service
	router.HandlerFunc(http.MethodGet, "/v1/users/me", app.requireAuthUser(app.currentUserHandler))

	// blog service
	router.HandlerFunc(http.MethodPost, "/v1/blog/quote", app.requireAuthUser(app.quoteHandler))
	router.HandlerFunc(http.MethodPost, "/v1/blog/generate", app.requireAuthUser(app.rateLimitGeneration(app.generatePostHandler)))
	router.HandlerFunc(http.MethodGet, "/v1/blog/posts", app.requireAuthUser(app.listPostsHandler))
	router.HandlerFunc(http.MethodGet, "/v1/blog/posts/:id", app.requireAuthUser(app.getPostHandler))
	router.HandlerFunc(http.MethodPut, "/v1/blog/posts/:id", app.requireAuthUser(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blog/posts/:id", app.requireAuthUser(app.deletePostHandler))

	// admin
	router.HandlerFunc(http.MethodPost, "/v1/admin/update-user", app.requireRole(app.updateUserHandler, userservice.RoleAdmin))
	router.HandlerFunc(http.MethodGet, "/v1/admin/users", app.requireRole(app.listUsersHandler, userservice.RoleAdmin))

	// billing provider
	router.HandlerFunc(http.MethodPost, "/v1/webhooks/subscription", app.subscriptionWebhookHandler)

	return app.requestID(app.recoverPanic(app.logRequest(app.authenticate(router))))
}
