package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/sushihentaime/quillpress/internal/blogservice"
	"github.com/sushihentaime/quillpress/internal/common"
	"github.com/sushihentaime/quillpress/internal/genservice"
	"github.com/sushihentaime/quillpress/internal/userservice"
)

const (
	testJWTSecret     = "test-jwt-secret"
	testWebhookSecret = "test-webhook-secret"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateText(ctx context.Context, source string) (*genservice.Draft, error) {
	args := m.Called(ctx, source)
	d, _ := args.Get(0).(*genservice.Draft)
	return d, args.Error(1)
}

func (m *mockGenerator) GenerateImage(ctx context.Context, prompt string) *string {
	args := m.Called(ctx, prompt)
	url, _ := args.Get(0).(*string)
	return url
}

func testConfig() *Config {
	return &Config{
		Environment: "testing",
		Version:     "test",
		Gen:         GenConfig{TextTimeout: time.Second, ImageTimeout: time.Second, RatePerMinute: 60, Burst: 100},
		Auth:        AuthConfig{JWTSecret: testJWTSecret, WebhookSecret: testWebhookSecret},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApplication wires the application against a fresh postgres container and a mocked model API.
func newTestApplication(t *testing.T) (*application, *sql.DB, *mockGenerator) {
	db := common.TestDB("file://../migrations", t)
	logger := discardLogger()
	cfg := testConfig()
	cache := common.NewCache(time.Minute, time.Minute)
	gen := new(mockGenerator)

	userService := userservice.NewUserService(db, cache, logger)

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userService,
		blogService: blogservice.NewBlogService(db, userService, gen, nil, blogservice.Config{
			TextTimeout:  cfg.Gen.TextTimeout,
			ImageTimeout: cfg.Gen.ImageTimeout,
		}, logger),
		limiter: common.NewLocalRateLimiter(cfg.Gen.RatePerMinute, cfg.Gen.Burst),
	}

	t.Cleanup(func() {
		cache.Flush()
	})

	return app, db, gen
}

func signToken(t *testing.T, secret, subject string, expiresIn time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func userToken(t *testing.T, id uuid.UUID) string {
	return signToken(t, testJWTSecret, id.String(), time.Hour)
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func (ts *testServer) do(t *testing.T, method, path, token string, payload any, headers http.Header) (int, http.Header, envelope) {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, token, nil, nil)
}

func (ts *testServer) post(t *testing.T, path, token string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, token, payload, nil)
}

func (ts *testServer) put(t *testing.T, path, token string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, token, payload, nil)
}

func (ts *testServer) delete(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, token, nil, nil)
}
