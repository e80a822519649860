package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sushihentaime/quillpress/internal/blogservice"
)

// generationRetryAfter is suggested to clients after an upstream timeout.
const generationRetryAfter = 30 * time.Second

func (app *application) logError(r *http.Request, err error) {
	var (
		method  = r.Method
		url     = r.URL.RequestURI()
		message = err.Error()
	)

	app.logger.Error(message, slog.String("method", method), slog.String("url", url), slog.String("request_id", requestIDFromContext(r.Context())))
}

func (app *application) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	app.writeErrorEnvelope(w, r, status, envelope{"error": message}, nil)
}

func (app *application) writeErrorEnvelope(w http.ResponseWriter, r *http.Request, status int, env envelope, headers http.Header) {
	err := app.writeJSON(w, status, env, headers)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	app.writeErrorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) badRequestErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusNotFound, "resource not found")
}

func (app *application) postNotFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusNotFound, "Post not found")
}

func (app *application) failedValidationErrorResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.writeErrorResponse(w, r, http.StatusBadRequest, errors)
}

func (app *application) unAuthorizedErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusUnauthorized, "Unauthorized")
}

func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.writeErrorResponse(w, r, http.StatusUnauthorized, "Unauthorized")
}

func (app *application) forbiddenErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusForbidden, "Forbidden")
}

func (app *application) subscriptionRequiredResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusForbidden, "Premium subscription required")
}

func (app *application) insufficientTokensResponse(w http.ResponseWriter, r *http.Request, e *blogservice.InsufficientTokensError) {
	env := envelope{
		"error":     "Insufficient tokens",
		"required":  e.Required,
		"available": e.Available,
	}
	app.writeErrorEnvelope(w, r, http.StatusPaymentRequired, env, nil)
}

func (app *application) generationTimeoutResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	headers := http.Header{"Retry-After": []string{strconv.Itoa(int(generationRetryAfter.Seconds()))}}
	app.writeErrorEnvelope(w, r, http.StatusGatewayTimeout, envelope{"error": "Blog post generation timed out, please try again"}, headers)
}

func (app *application) generationFailedResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.writeErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate blog post")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	seconds := int(retryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	headers := http.Header{"Retry-After": []string{strconv.Itoa(seconds)}}
	app.writeErrorEnvelope(w, r, http.StatusTooManyRequests, envelope{"error": "rate limit exceeded"}, headers)
}

func (app *application) invalidSignatureResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusUnauthorized, "invalid webhook signature")
}

func (app *application) methodNotAllowedErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
