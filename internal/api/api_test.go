package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Thinkabouthev/backend-hw2/internal/api"
	apimiddleware "github.com/Thinkabouthev/backend-hw2/internal/api/middleware"
	"github.com/Thinkabouthev/backend-hw2/internal/assistant"
	"github.com/Thinkabouthev/backend-hw2/internal/mocks"
	"github.com/Thinkabouthev/backend-hw2/internal/service/auth"
)

const tokenPrefix = "token-for:"

// stubRelay implements api.ChatRelay with a scripted outcome.
type stubRelay struct {
	result *assistant.ChatResult
	err    error
}

func (s *stubRelay) Chat(ctx context.Context, userMessage string) (*assistant.ChatResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// testEnv wires the full router over mock stores, mirroring production
// route registration so middleware is exercised too.
type testEnv struct {
	userStore *mocks.MockUserStore
	taskStore *mocks.MockTaskStore
	verifier  *mocks.MockPasswordVerifier
	relay     *stubRelay
	router    http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		userStore: mocks.NewMockUserStore(),
		taskStore: mocks.NewMockTaskStore(),
		verifier:  &mocks.MockPasswordVerifier{ShouldSucceed: true},
		relay:     &stubRelay{},
	}

	// Tokens are "token-for:<uuid>"; validation just parses the suffix.
	jwtService := &auth.MockJWTService{
		GenerateTokenFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
			return tokenPrefix + userID.String(), nil
		},
		ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
			raw, ok := strings.CutPrefix(token, tokenPrefix)
			if !ok {
				return nil, auth.ErrInvalidToken
			}
			userID, err := uuid.Parse(raw)
			if err != nil {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID, Subject: raw}, nil
		},
	}

	authHandler := api.NewAuthHandler(env.userStore, jwtService, env.verifier)
	taskHandler := api.NewTaskHandler(env.taskStore)
	assistantHandler := api.NewAssistantHandler(env.relay)
	authMiddleware := apimiddleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Use(apimiddleware.TraceMiddleware)
	r.Post("/register", authHandler.Register)
	r.Post("/token", authHandler.Token)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/me", authHandler.Me)
		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks", taskHandler.List)
		r.Get("/tasks/{taskID}", taskHandler.Get)
		r.Put("/tasks/{taskID}", taskHandler.Update)
		r.Delete("/tasks/{taskID}", taskHandler.Delete)
	})
	r.Post("/assistant/a2a-chat", assistantHandler.Chat)

	env.router = r
	return env
}

// do executes a request against the router and returns the recorder.
func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

// doForm posts URL-encoded form data, as the token endpoint expects.
func (env *testEnv) doForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func tokenFor(userID uuid.UUID) string {
	return tokenPrefix + userID.String()
}
