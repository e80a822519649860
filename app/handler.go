package main

import (
	"errors"
	"net/http"

	"github.com/sushihentaime/quillpress/internal/blogservice"
	"github.com/sushihentaime/quillpress/internal/common"
	"github.com/sushihentaime/quillpress/internal/genservice"
)

func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := *app.getUserContext(r)
	access := app.userService.CheckAccess(r.Context(), user.ID)

	// the identity may come from the cache; the balance must not
	user.Tokens = access.Tokens

	err := app.writeJSON(w, http.StatusOK, envelope{"user": user, "access": access}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type originalTextRequest struct {
	OriginalText string `json:"originalText"`
}

func (app *application) quoteHandler(w http.ResponseWriter, r *http.Request) {
	var input originalTextRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	env := envelope{
		"characterCount": genservice.CharacterCount(input.OriginalText),
		"tokensRequired": genservice.TokenCost(input.OriginalText),
	}

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) generatePostHandler(w http.ResponseWriter, r *http.Request) {
	var input originalTextRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	res, err := app.blogService.GeneratePost(r.Context(), blogservice.GenerateRequest{
		UserID:       user.ID,
		Email:        user.Email,
		OriginalText: input.OriginalText,
	})
	if err != nil {
		var (
			validationErr common.ValidationError
			tokensErr     *blogservice.InsufficientTokensError
			genErr        *genservice.GenerationError
		)

		switch {
		case errors.Is(err, blogservice.ErrAccessRequired):
			app.subscriptionRequiredResponse(w, r)
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		case errors.As(err, &tokensErr):
			app.insufficientTokensResponse(w, r, tokensErr)
		case errors.Is(err, blogservice.ErrGenerationTimeout):
			app.generationTimeoutResponse(w, r, err)
		case errors.As(err, &genErr):
			app.generationFailedResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	env := envelope{
		"success":         true,
		"blogPost":        res.Post,
		"tokensUsed":      res.TokensUsed,
		"remainingTokens": res.RemainingTokens,
	}

	err = app.writeJSON(w, http.StatusCreated, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit, err := app.readPageParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	posts, pagination, err := app.blogService.ListPosts(r.Context(), user.ID, page, limit)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts, "pagination": pagination}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.postNotFoundResponse(w, r)
		return
	}

	user := app.getUserContext(r)

	post, err := app.blogService.GetPost(r.Context(), user.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.postNotFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, post, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.postNotFoundResponse(w, r)
		return
	}

	var input blogservice.UpdatePostRequest
	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	post, err := app.blogService.UpdatePost(r.Context(), user.ID, id, input)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.postNotFoundResponse(w, r)
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, post, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.postNotFoundResponse(w, r)
		return
	}

	user := app.getUserContext(r)

	err = app.blogService.DeletePost(r.Context(), user.ID, id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.postNotFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"success": true}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
