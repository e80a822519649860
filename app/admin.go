package main

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/sushihentaime/quillpress/internal/common"
	"github.com/sushihentaime/quillpress/internal/userservice"
)

type updateUserRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	var input updateUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	if input.UserID == "" {
		app.writeErrorResponse(w, r, http.StatusBadRequest, "User ID required")
		return
	}

	id, err := uuid.Parse(input.UserID)
	if err != nil {
		app.failedValidationErrorResponse(w, r, map[string]string{"userId": "must be a valid id"})
		return
	}

	if _, err := userservice.ParseRole(input.Role); err != nil {
		app.writeErrorResponse(w, r, http.StatusBadRequest, "No valid updates provided")
		return
	}

	user, err := app.userService.UpdateRole(r.Context(), id, input.Role)
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

	err = app.writeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	page, limit, err := app.readPageParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	page, limit = common.NormalizePage(page, limit)

	users, total, err := app.userService.ListUsers(r.Context(), limit, common.Offset(page, limit))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	env := envelope{
		"users":      users,
		"pagination": common.NewPagination(page, limit, total),
	}

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
