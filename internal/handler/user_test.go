package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hpnchanel/userapi/internal/middleware"
	"github.com/hpnchanel/userapi/internal/repository"
	"github.com/hpnchanel/userapi/internal/service"
)

// newTestRouter wires the user routes the way cmd/api does, backed by an
// in-memory store.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	store, err := repository.NewSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(store.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewUserService(store, nil, nil)
	userHandler := NewUserHandler(svc, logger)
	h := New()

	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.List)
		r.With(middleware.RequireJSON()).Post("/", userHandler.Create)

		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", userHandler.Get)
			r.With(middleware.RequireJSON()).Put("/", userHandler.Update)
			r.Delete("/", userHandler.Delete)
		})
	})
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func createUser(t *testing.T, router http.Handler, name, email string) map[string]any {
	t.Helper()

	body := fmt.Sprintf(`{"name":%q,"email":%q}`, name, email)
	rec := doJSON(t, router, http.MethodPost, "/users", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[map[string]any](t, rec)
}

func TestCreateUser_Created(t *testing.T) {
	router := newTestRouter(t)

	user := createUser(t, router, "Test User", "test@example.com")

	id, ok := user["id"].(float64)
	if !ok || id < 1 {
		t.Errorf("expected integer id >= 1, got %v", user["id"])
	}
	if user["name"] != "Test User" {
		t.Errorf("unexpected name: %v", user["name"])
	}
	if user["email"] != "test@example.com" {
		t.Errorf("unexpected email: %v", user["email"])
	}
	if user["created_at"] == nil || user["created_at"] == "" {
		t.Error("expected created_at to be present")
	}

	// Round trip through GET by id.
	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/users/%d", int64(id)), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	fetched := decodeBody[map[string]any](t, rec)
	if fetched["name"] != "Test User" || fetched["email"] != "test@example.com" {
		t.Errorf("round trip mismatch: %v", fetched)
	}
}

func TestCreateUser_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"short name", `{"name":"a","email":"test@example.com"}`, "name"},
		{"missing name", `{"email":"test@example.com"}`, "name"},
		{"invalid email", `{"name":"Test User","email":"not-an-email"}`, "email"},
		{"missing email", `{"name":"Test User"}`, "email"},
		{"empty body", ``, "name"},
		{"malformed body treated as empty", `{not json`, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t)

			rec := doJSON(t, router, http.MethodPost, "/users", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}

			errs := decodeBody[map[string][]string](t, rec)
			if len(errs[tt.wantField]) == 0 {
				t.Errorf("expected an error on field %q, got %v", tt.wantField, errs)
			}

			// No record may have been created.
			listRec := doJSON(t, router, http.MethodGet, "/users", "")
			users := decodeBody[[]map[string]any](t, listRec)
			if len(users) != 0 {
				t.Errorf("rejected POST created a record: %v", users)
			}
		})
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "First", "dup@example.com")

	rec := doJSON(t, router, http.MethodPost, "/users", `{"name":"Second","email":"dup@example.com"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody[map[string]string](t, rec)
	if body["error"] != "User with this email already exists" {
		t.Errorf("unexpected error message: %q", body["error"])
	}

	listRec := doJSON(t, router, http.MethodGet, "/users", "")
	users := decodeBody[[]map[string]any](t, listRec)
	if len(users) != 1 {
		t.Errorf("expected 1 user after duplicate attempt, got %d", len(users))
	}
}

func TestCreateUser_WrongContentType(t *testing.T) {
	router := newTestRouter(t)

	// Valid payload, wrong media type; the 415 check runs first.
	req := httptest.NewRequest(http.MethodPost, "/users",
		bytes.NewBufferString(`{"name":"Test User","email":"test@example.com"}`))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] != "Invalid content type" {
		t.Errorf("unexpected error message: %q", body["error"])
	}
}

func TestListUsers_EmptyStore(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/users", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// An empty store serializes as [], not null.
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("expected empty array body, got %q", got)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/users/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] != "User not found" {
		t.Errorf("unexpected error message: %q", body["error"])
	}
}

func TestGetUser_NonNumericID(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/users/abc", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-numeric id, got %d", rec.Code)
	}
}

func TestUpdateUser_NameOnly(t *testing.T) {
	router := newTestRouter(t)

	user := createUser(t, router, "Test User", "test@example.com")
	id := int64(user["id"].(float64))

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/users/%d", id), `{"name":"Updated Name"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated := decodeBody[map[string]any](t, rec)
	if updated["name"] != "Updated Name" {
		t.Errorf("unexpected name: %v", updated["name"])
	}
	if updated["email"] != "test@example.com" {
		t.Errorf("email changed on name-only update: %v", updated["email"])
	}
	if int64(updated["id"].(float64)) != id {
		t.Errorf("id changed on update: %v", updated["id"])
	}
}

func TestUpdateUser_NoRecognizedFields(t *testing.T) {
	router := newTestRouter(t)

	user := createUser(t, router, "Test User", "test@example.com")
	id := int64(user["id"].(float64))

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/users/%d", id), `{"role":"admin"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	same := decodeBody[map[string]any](t, rec)
	if same["name"] != "Test User" || same["email"] != "test@example.com" {
		t.Errorf("unrecognized fields mutated the record: %v", same)
	}
}

func TestUpdateUser_ValidationError(t *testing.T) {
	router := newTestRouter(t)

	user := createUser(t, router, "Test User", "test@example.com")
	id := int64(user["id"].(float64))

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/users/%d", id), `{"email":"bad"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	errs := decodeBody[map[string][]string](t, rec)
	if len(errs["email"]) == 0 {
		t.Errorf("expected an email error, got %v", errs)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/users/999", `{"name":"Ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	// No record may have been created.
	listRec := doJSON(t, router, http.MethodGet, "/users", "")
	users := decodeBody[[]map[string]any](t, listRec)
	if len(users) != 0 {
		t.Errorf("PUT on missing id created a record: %v", users)
	}
}

func TestUpdateUser_EmailConflict(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "First", "first@example.com")
	second := createUser(t, router, "Second", "second@example.com")
	id := int64(second["id"].(float64))

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/users/%d", id), `{"email":"first@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string]string](t, rec)
	if body["error"] != "Email already exists" {
		t.Errorf("unexpected error message: %q", body["error"])
	}
}

func TestUpdateUser_WrongContentType(t *testing.T) {
	router := newTestRouter(t)

	user := createUser(t, router, "Test User", "test@example.com")
	id := int64(user["id"].(float64))

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/users/%d", id),
		bytes.NewBufferString(`{"name":"Updated Name"}`))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestDeleteUser(t *testing.T) {
	router := newTestRouter(t)

	user := createUser(t, router, "Test User", "test@example.com")
	id := int64(user["id"].(float64))

	rec := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/users/%d", id), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[map[string]string](t, rec)
	if body["message"] != "User deleted" {
		t.Errorf("unexpected message: %q", body["message"])
	}

	// The record is gone.
	getRec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/users/%d", id), "")
	if getRec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", getRec.Code)
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	router := newTestRouter(t)

	createUser(t, router, "Survivor", "keep@example.com")

	rec := doJSON(t, router, http.MethodDelete, "/users/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	// Nothing was mutated.
	listRec := doJSON(t, router, http.MethodGet, "/users", "")
	users := decodeBody[[]map[string]any](t, listRec)
	if len(users) != 1 {
		t.Errorf("DELETE on missing id mutated the store: %v", users)
	}
}

// TestUserLifecycle walks the full create, update, delete, verify sequence.
func TestUserLifecycle(t *testing.T) {
	router := newTestRouter(t)

	user := createUser(t, router, "Test User", "test@example.com")
	id := int64(user["id"].(float64))
	if id < 1 {
		t.Fatalf("expected id >= 1, got %d", id)
	}

	putRec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/users/%d", id), `{"name":"Updated Name"}`)
	if putRec.Code != http.StatusOK {
		t.Fatalf("PUT: expected 200, got %d", putRec.Code)
	}
	updated := decodeBody[map[string]any](t, putRec)
	if updated["name"] != "Updated Name" || updated["email"] != "test@example.com" {
		t.Errorf("unexpected PUT result: %v", updated)
	}

	delRec := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/users/%d", id), "")
	if delRec.Code != http.StatusOK {
		t.Fatalf("DELETE: expected 200, got %d", delRec.Code)
	}
	msg := decodeBody[map[string]string](t, delRec)
	if msg["message"] != "User deleted" {
		t.Errorf("unexpected DELETE body: %v", msg)
	}

	getRec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/users/%d", id), "")
	if getRec.Code != http.StatusNotFound {
		t.Errorf("GET after delete: expected 404, got %d", getRec.Code)
	}
}
