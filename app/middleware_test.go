package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/quillpress/internal/common"
	"github.com/sushihentaime/quillpress/internal/userservice"
)

func newMiddlewareApplication() *application {
	return &application{
		config:  testConfig(),
		logger:  discardLogger(),
		limiter: common.NewLocalRateLimiter(60, 1),
	}
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func TestRecoverPanic(t *testing.T) {
	app := newMiddlewareApplication()

	h := app.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))
}

func TestRequestID(t *testing.T) {
	app := newMiddlewareApplication()

	var seen string
	h := app.requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "upstream-id")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "upstream-id", seen)
}

func TestAuthenticate_WithoutLookup(t *testing.T) {
	app := newMiddlewareApplication()

	var anonymous bool
	h := app.authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		anonymous = app.getUserContext(r).IsAnonymous()
		w.WriteHeader(http.StatusOK)
	}))

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{name: "no header", header: "", status: http.StatusOK},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", status: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other-secret", uuid.NewString(), time.Hour), status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, testJWTSecret, uuid.NewString(), -time.Minute), status: http.StatusUnauthorized},
		{name: "subject is not an id", header: "Bearer " + signToken(t, testJWTSecret, "alice", time.Hour), status: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tc.status, rr.Code)
			if tc.status == http.StatusOK {
				assert.True(t, anonymous)
			}
		})
	}
}

func TestParseSessionToken(t *testing.T) {
	app := newMiddlewareApplication()
	id := uuid.New()

	got, err := app.parseSessionToken(userToken(t, id))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	app.config.Auth.JWTIssuer = "https://id.example.com"
	_, err = app.parseSessionToken(userToken(t, id))
	assert.ErrorIs(t, err, errInvalidSessionToken)
}

func TestRequireAuthUserAndRole(t *testing.T) {
	app := newMiddlewareApplication()

	testCases := []struct {
		name        string
		user        *userservice.User
		adminStatus int
		authStatus  int
	}{
		{name: "anonymous", user: &userservice.AnonymousUser, adminStatus: http.StatusUnauthorized, authStatus: http.StatusUnauthorized},
		{name: "user", user: &userservice.User{ID: uuid.New(), Role: userservice.RoleUser}, adminStatus: http.StatusForbidden, authStatus: http.StatusOK},
		{name: "admin", user: &userservice.User{ID: uuid.New(), Role: userservice.RoleAdmin}, adminStatus: http.StatusOK, authStatus: http.StatusOK},
		{name: "banned", user: &userservice.User{ID: uuid.New(), Role: userservice.RoleBanned}, adminStatus: http.StatusForbidden, authStatus: http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := app.createUserContext(httptest.NewRequest(http.MethodGet, "/", nil), tc.user)

			rr := httptest.NewRecorder()
			app.requireAuthUser(okHandler).ServeHTTP(rr, req)
			assert.Equal(t, tc.authStatus, rr.Code)

			rr = httptest.NewRecorder()
			app.requireRole(okHandler, userservice.RoleAdmin).ServeHTTP(rr, req)
			assert.Equal(t, tc.adminStatus, rr.Code)
		})
	}
}

func TestRateLimitGeneration(t *testing.T) {
	app := newMiddlewareApplication()
	h := app.rateLimitGeneration(okHandler)

	alice := &userservice.User{ID: uuid.New(), Role: userservice.RoleUser}
	bob := &userservice.User{ID: uuid.New(), Role: userservice.RoleUser}

	serve := func(u *userservice.User) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, app.createUserContext(httptest.NewRequest(http.MethodPost, "/v1/blog/generate", nil), u))
		return rr
	}

	assert.Equal(t, http.StatusOK, serve(alice).Code)

	rr := serve(alice)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(bob).Code)
}

func TestReadPageParams(t *testing.T) {
	app := newMiddlewareApplication()

	testCases := []struct {
		query string
		page  int
		limit int
		err   bool
	}{
		{query: "", page: 0, limit: 0},
		{query: "?page=2&limit=5", page: 2, limit: 5},
		{query: "?page=abc", err: true},
		{query: "?limit=1.5", err: true},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			page, limit, err := app.readPageParams(httptest.NewRequest(http.MethodGet, "/v1/blog/posts"+tc.query, nil))
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.page, page)
			assert.Equal(t, tc.limit, limit)
		})
	}
}
