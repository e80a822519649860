package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sushihentaime/quillpress/internal/common"
	"github.com/sushihentaime/quillpress/internal/userservice"
)

const maxWebhookBytes = 64 << 10

// subscriptionWebhookHandler verifies the signature over the raw body before decoding it.
func (app *application) subscriptionWebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = userservice.VerifySignature(
		app.config.Auth.WebhookSecret,
		r.Header.Get(userservice.SignatureHeader),
		r.Header.Get(userservice.TimestampHeader),
		body,
		time.Now(),
	)
	if err != nil {
		app.logger.Warn("rejected webhook", "error", err, "request_id", requestIDFromContext(r.Context()))
		app.invalidSignatureResponse(w, r)
		return
	}

	var event userservice.SubscriptionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		app.badRequestErrorResponse(w, r, errors.New("request body contains badly-formed JSON"))
		return
	}

	applied, err := app.userService.ApplySubscriptionEvent(r.Context(), event)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, userservice.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	message := "event processed"
	if !applied {
		message = "event already processed"
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": message}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
