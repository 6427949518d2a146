package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msomdec/account-service/internal/handler"
	"github.com/msomdec/account-service/internal/repository/jsonfile"
	"github.com/msomdec/account-service/internal/service"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-for-handler-tests-0123456789"

type testServices struct {
	auth  *service.AuthService
	users *service.UserService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	store, err := jsonfile.Open(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("Open store: %v", err)
	}
	users, err := service.NewUserService(jsonfile.NewUserRepository(store), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}
	return &testServices{
		auth:  service.NewAuthService(users, service.NewTokenIssuer(testSecret, 0), service.NewMemoryRevocationList()),
		users: users,
	}
}

func newTestServer(t *testing.T, svc *testServices, cfg handler.RouterConfig) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler.NewRouter(svc.auth, svc.users, cfg))
	t.Cleanup(srv.Close)
	return srv
}

// registerAndLogin creates a1/p1 and returns its id and a session token.
func registerAndLogin(t *testing.T, svc *testServices) (string, string) {
	t.Helper()
	ctx := context.Background()
	id, err := svc.users.Create(ctx, service.RegisterInput{
		Account: "a1", Password: "p1", Name: "N", Mail: "a1@x.com", Head: "h",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	token, err := svc.auth.Login(ctx, "a1", "p1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return id, token
}

type envelope struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Token   string           `json:"token"`
	ID      string           `json:"id"`
	User    map[string]any   `json:"user"`
	Users   []map[string]any `json:"users"`
}

func doJSON(t *testing.T, method, url, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode body: %v", method, url, err)
	}
	return resp.StatusCode, env
}
