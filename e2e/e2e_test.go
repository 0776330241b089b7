//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"dates-app-go/internal/config"
	"dates-app-go/internal/db"
	relationshipdomain "dates-app-go/internal/domain/relationship"
	userdomain "dates-app-go/internal/domain/user"
	relationshiprepo "dates-app-go/internal/repository/postgres/relationship"
	userrepo "dates-app-go/internal/repository/postgres/user"
	"dates-app-go/internal/transport/httpserver"
	"dates-app-go/internal/transport/httpserver/handler"
	authmw "dates-app-go/internal/transport/httpserver/middleware"
	"dates-app-go/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	log := logger.New(io.Discard, slog.LevelError, "text")

	cfg := config.Config{
		DB: config.DBConfig{DSN: dsn},
		Auth: config.AuthConfig{
			JWTSecret:  "e2e-secret",
			JWTIssuer:  "dates-app",
			JWTTTL:     time.Minute,
			BcryptCost: bcrypt.MinCost,
		},
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}

	if err := db.Migrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	userService := userdomain.NewService(userrepo.NewPostgres(dbConn), cfg.Auth.BcryptCost)
	relationshipService := relationshipdomain.NewService(relationshiprepo.NewPostgres(dbConn))
	auth := authmw.NewJWTAuth(cfg.Auth)
	handlers := handler.New(userService, relationshipService, auth, log)

	router := httpserver.NewRouter(cfg, handlers, auth)
	server := httptest.NewServer(router)

	return &testEnv{server: server, db: dbConn}
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	for _, table := range []string{"relationship_users", "relationship", "users"} {
		if err := dbConn.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()

	status, err := e.tryRequest(method, path, token, body, out)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return status
}

// tryRequest is safe to call from helper goroutines; it reports failures as
// errors instead of stopping the test.
func (e *testEnv) tryRequest(method, path, token string, body interface{}, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if out != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return 0, fmt.Errorf("read body: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return 0, fmt.Errorf("unmarshal %q: %w", string(data), err)
			}
		}
	}

	return resp.StatusCode, nil
}

type registeredUser struct {
	id    int64
	token string
}

func (e *testEnv) registerAndLogin(t *testing.T, username, password string) registeredUser {
	t.Helper()

	var created struct {
		ID int64 `json:"id"`
	}
	status := e.request(t, http.MethodPost, "/createuser", "", map[string]string{
		"username": username,
		"password": password,
	}, &created)
	if status != http.StatusOK {
		t.Fatalf("createuser %s: expected 200, got %d", username, status)
	}

	var authed struct {
		Token  string `json:"token"`
		UserID int64  `json:"user_id"`
	}
	status = e.request(t, http.MethodPost, "/auth", "", map[string]string{
		"username": username,
		"password": password,
	}, &authed)
	if status != http.StatusAccepted {
		t.Fatalf("auth %s: expected 202, got %d", username, status)
	}

	return registeredUser{id: authed.UserID, token: authed.Token}
}

func TestRelationshipLifecycle(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	alice := env.registerAndLogin(t, "alice", "password-a")
	bob := env.registerAndLogin(t, "bob", "password-b")
	carol := env.registerAndLogin(t, "carol", "password-c")
	mallory := env.registerAndLogin(t, "mallory", "password-m")

	status := env.request(t, http.MethodPost, "/auth", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("auth with wrong password: expected 401, got %d", status)
	}

	var created struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	status = env.request(t, http.MethodPost, "/createrelation", alice.token, map[string]interface{}{
		"name":           "weekend trip",
		"color":          "#fff",
		"user_creator":   alice.id,
		"proposed_users": []string{"bob", "carol"},
	}, &created)
	if status != http.StatusOK {
		t.Fatalf("createrelation: expected 200, got %d", status)
	}
	if created.Status != "pending" {
		t.Fatalf("expected pending relationship, got %q", created.Status)
	}

	var memberCount int64
	if err := env.db.Table("relationship_users").Where("relationship_id = ?", created.ID).Count(&memberCount).Error; err != nil {
		t.Fatalf("count members: %v", err)
	}
	if memberCount != 3 {
		t.Fatalf("expected 3 membership rows, got %d", memberCount)
	}

	accept := func(u registeredUser) (int, bool, string) {
		var result struct {
			Status       string `json:"status"`
			Transitioned bool   `json:"transitioned"`
		}
		path := fmt.Sprintf("/accept-relationship?user_id=%d&relationship_id=%d", u.id, created.ID)
		code := env.request(t, http.MethodGet, path, u.token, nil, &result)
		return code, result.Transitioned, result.Status
	}

	code, transitioned, relStatus := accept(bob)
	if code != http.StatusOK || transitioned || relStatus != "pending" {
		t.Fatalf("bob accept: expected 200/pending/no transition, got %d/%s/%v", code, relStatus, transitioned)
	}

	code, transitioned, relStatus = accept(carol)
	if code != http.StatusOK || !transitioned || relStatus != "active" {
		t.Fatalf("carol accept: expected 200/active/transition, got %d/%s/%v", code, relStatus, transitioned)
	}

	code, _, _ = accept(carol)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("repeat accept: expected 422, got %d", code)
	}

	var views []struct {
		ID      int64  `json:"id"`
		Status  string `json:"status"`
		Members []struct {
			Username  string `json:"username"`
			Confirmed bool   `json:"confirmed"`
		} `json:"members"`
	}
	path := fmt.Sprintf("/get-relationship?user_id=%d", alice.id)
	code = env.request(t, http.MethodGet, path, alice.token, nil, &views)
	if code != http.StatusOK {
		t.Fatalf("get-relationship: expected 200, got %d", code)
	}
	if len(views) != 1 || views[0].Status != "active" || len(views[0].Members) != 3 {
		t.Fatalf("unexpected listing: %+v", views)
	}
	for _, member := range views[0].Members {
		if !member.Confirmed {
			t.Fatalf("expected all members confirmed, got %+v", views[0].Members)
		}
	}

	deletePath := fmt.Sprintf("/delete-relationship?user_id=%d&relationship_id=%d", mallory.id, created.ID)
	code = env.request(t, http.MethodDelete, deletePath, mallory.token, nil, nil)
	if code != http.StatusForbidden {
		t.Fatalf("delete by non-member: expected 403, got %d", code)
	}

	deletePath = fmt.Sprintf("/delete-relationship?user_id=%d&relationship_id=%d", bob.id, created.ID)
	code = env.request(t, http.MethodDelete, deletePath, bob.token, nil, nil)
	if code != http.StatusOK {
		t.Fatalf("delete by member: expected 200, got %d", code)
	}

	if err := env.db.Table("relationship_users").Where("relationship_id = ?", created.ID).Count(&memberCount).Error; err != nil {
		t.Fatalf("count members after delete: %v", err)
	}
	if memberCount != 0 {
		t.Fatalf("expected no orphaned membership rows, got %d", memberCount)
	}
}

func TestCreateRelationRollsBackOnUnknownUser(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	alice := env.registerAndLogin(t, "alice", "password-a")

	status := env.request(t, http.MethodPost, "/createrelation", alice.token, map[string]interface{}{
		"name":           "ghost party",
		"user_creator":   alice.id,
		"proposed_users": []string{"nobody"},
	}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}

	var count int64
	if err := env.db.Table("relationship").Count(&count).Error; err != nil {
		t.Fatalf("count relationships: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected creation rolled back, found %d relationship rows", count)
	}
}

func TestEditRelationship(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	alice := env.registerAndLogin(t, "alice", "password-a")
	bob := env.registerAndLogin(t, "bob", "password-b")
	mallory := env.registerAndLogin(t, "mallory", "password-m")

	var created struct {
		ID int64 `json:"id"`
	}
	status := env.request(t, http.MethodPost, "/createrelation", alice.token, map[string]interface{}{
		"name":           "dinner",
		"user_creator":   alice.id,
		"proposed_users": []string{"bob"},
	}, &created)
	if status != http.StatusOK {
		t.Fatalf("createrelation: expected 200, got %d", status)
	}

	status = env.request(t, http.MethodPut, "/edit-relationship", mallory.token, map[string]interface{}{
		"id":      created.ID,
		"user_id": mallory.id,
		"name":    "hijacked",
	}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("edit by non-member: expected 403, got %d", status)
	}

	var edited struct {
		Name  string  `json:"name"`
		Color *string `json:"color"`
	}
	status = env.request(t, http.MethodPut, "/edit-relationship", bob.token, map[string]interface{}{
		"id":      created.ID,
		"user_id": bob.id,
		"name":    "sunday dinner",
		"color":   "#ffffff",
	}, &edited)
	if status != http.StatusOK {
		t.Fatalf("edit by member: expected 200, got %d", status)
	}
	if edited.Name != "sunday dinner" || edited.Color == nil || *edited.Color != "#ffffff" {
		t.Fatalf("unexpected edit result: %+v", edited)
	}
}

// Two still-unconfirmed members accept at the same time. The relationship row
// is locked for the duration of each confirmation, so exactly one of the two
// requests must observe the pending-to-active transition.
func TestConcurrentFinalConfirmations(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	alice := env.registerAndLogin(t, "alice", "password-a")
	bob := env.registerAndLogin(t, "bob", "password-b")
	carol := env.registerAndLogin(t, "carol", "password-c")

	for round := 0; round < 5; round++ {
		var created struct {
			ID int64 `json:"id"`
		}
		status := env.request(t, http.MethodPost, "/createrelation", alice.token, map[string]interface{}{
			"name":           fmt.Sprintf("race round %d", round),
			"user_creator":   alice.id,
			"proposed_users": []string{"bob", "carol"},
		}, &created)
		if status != http.StatusOK {
			t.Fatalf("round %d createrelation: expected 200, got %d", round, status)
		}

		type acceptOutcome struct {
			code         int
			transitioned bool
			err          error
		}
		outcomes := make([]acceptOutcome, 2)

		var wg sync.WaitGroup
		for i, u := range []registeredUser{bob, carol} {
			wg.Add(1)
			go func(i int, u registeredUser) {
				defer wg.Done()
				var result struct {
					Transitioned bool `json:"transitioned"`
				}
				path := fmt.Sprintf("/accept-relationship?user_id=%d&relationship_id=%d", u.id, created.ID)
				code, err := env.tryRequest(http.MethodGet, path, u.token, nil, &result)
				outcomes[i] = acceptOutcome{code: code, transitioned: result.Transitioned, err: err}
			}(i, u)
		}
		wg.Wait()

		transitions := 0
		for i, outcome := range outcomes {
			if outcome.err != nil {
				t.Fatalf("round %d accept %d: %v", round, i, outcome.err)
			}
			if outcome.code != http.StatusOK {
				t.Fatalf("round %d accept %d: expected 200, got %d", round, i, outcome.code)
			}
			if outcome.transitioned {
				transitions++
			}
		}
		if transitions != 1 {
			t.Fatalf("round %d: expected exactly one transition, got %d", round, transitions)
		}

		var relStatus string
		if err := env.db.Table("relationship").Select("status").Where("id = ?", created.ID).Scan(&relStatus).Error; err != nil {
			t.Fatalf("round %d read status: %v", round, err)
		}
		if relStatus != "active" {
			t.Fatalf("round %d: expected active relationship, got %q", round, relStatus)
		}
	}
}
