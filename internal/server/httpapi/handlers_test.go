package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/mkokor/jwt-based-access-management/internal/common"
	"github.com/mkokor/jwt-based-access-management/internal/dbx"
	"github.com/mkokor/jwt-based-access-management/internal/logging"
	"github.com/mkokor/jwt-based-access-management/internal/server/config"
	"github.com/mkokor/jwt-based-access-management/internal/server/models"
	"github.com/mkokor/jwt-based-access-management/internal/server/repositories/refreshtokens"
	"github.com/mkokor/jwt-based-access-management/internal/server/repositories/users"
	"github.com/mkokor/jwt-based-access-management/internal/server/services"
)

const testSecret = "testSecret"

type memUsersRepo struct {
	mu   sync.Mutex
	rows []*models.User
}

func (m *memUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Username == user.Username {
			return nil, common.ErrUsernameTaken
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	cp := *user
	m.rows = append(m.rows, &cp)
	return user, nil
}

func (m *memUsersRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) ListAll(_ context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*models.User, 0, len(m.rows))
	for _, u := range m.rows {
		cp := *u
		result = append(result, &cp)
	}
	return result, nil
}

type memTokensRepo struct {
	mu   sync.Mutex
	rows map[string]*models.RefreshToken
}

func (m *memTokensRepo) Create(_ context.Context, token *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.ID = uuid.NewString()
	cp := *token
	m.rows[token.UserID] = &cp
	return nil
}

func (m *memTokensRepo) FindByOwner(_ context.Context, userID string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *memTokensRepo) FindByValue(_ context.Context, value string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Token == value {
			cp := *row
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memTokensRepo) Rotate(_ context.Context, userID string, token *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[userID]
	if !ok {
		return common.ErrorNotFound
	}
	row.Token = token.Token
	row.CreatedAt = token.CreatedAt
	row.Expires = token.Expires
	token.ID = row.ID
	return nil
}

type fakeRepoManager struct {
	users  *memUsersRepo
	tokens *memTokensRepo
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return f.users }
func (f *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return f.tokens
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fm := &fakeRepoManager{
		users:  &memUsersRepo{},
		tokens: &memTokensRepo{rows: map[string]*models.RefreshToken{}},
	}
	cfg := &config.Config{
		SecretKey:                    testSecret,
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
	}
	authService := services.NewAuthService(db, fm, cfg)

	srv := NewServer(":0", testLogger(), authService, testSecret)
	return srv.Handler(), mock
}

func expectTx(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func postJSON(t *testing.T, h http.Handler, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func credentials(username, pass string) map[string]string {
	return map[string]string{"username": username, "password": pass}
}

func register(t *testing.T, h http.Handler, mock sqlmock.Sqlmock, username, pass string) {
	t.Helper()
	expectTx(mock)
	rr := postJSON(t, h, "/api/authentication/register", credentials(username, pass))
	if rr.Code != http.StatusCreated {
		t.Fatalf("registration failed: %d %s", rr.Code, rr.Body.String())
	}
}

func login(t *testing.T, h http.Handler, mock sqlmock.Sqlmock, username, pass string) (string, *http.Cookie) {
	t.Helper()
	expectTx(mock)
	rr := postJSON(t, h, "/api/authentication/login", credentials(username, pass))
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rr.Code, rr.Body.String())
	}

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	for _, c := range rr.Result().Cookies() {
		if c.Name == RefreshTokenCookieName {
			return body.AccessToken, c
		}
	}
	t.Fatalf("login response carries no %s cookie", RefreshTokenCookieName)
	return "", nil
}

const goodPassword = "Sup3rSecret!"

func TestHandleRegister_Success(t *testing.T) {
	h, mock := newTestServer(t)
	expectTx(mock)

	rr := postJSON(t, h, "/api/authentication/register", credentials("john", goodPassword))
	if rr.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var body userResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.ID == "" || body.Username != "john" || body.Role != models.RoleBasicUser {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHandleRegister_Conflict(t *testing.T) {
	h, mock := newTestServer(t)
	register(t, h, mock, "john", goodPassword)

	rr := postJSON(t, h, "/api/authentication/register", credentials("john", goodPassword))
	if rr.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleRegister_WeakPassword(t *testing.T) {
	h, _ := newTestServer(t)

	rr := postJSON(t, h, "/api/authentication/register", credentials("john", "nodigits"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleRegister_BadBody(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/authentication/register",
		bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rr.Code)
	}

	rr = postJSON(t, h, "/api/authentication/register", credentials("", goodPassword))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("want 400 for empty username, got %d", rr.Code)
	}
}

func TestHandleLogin_SetsRefreshCookie(t *testing.T) {
	h, mock := newTestServer(t)
	register(t, h, mock, "john", goodPassword)

	access, cookie := login(t, h, mock, "john", goodPassword)
	if access == "" {
		t.Fatalf("login must return an access token")
	}
	if cookie.Value == "" {
		t.Fatalf("cookie carries no value")
	}
	if !cookie.HttpOnly {
		t.Fatalf("refresh cookie must be HTTP-only")
	}
	if cookie.Path != cookiePath {
		t.Fatalf("refresh cookie path: want %q, got %q", cookiePath, cookie.Path)
	}
}

func TestHandleLogin_NoAccountEnumeration(t *testing.T) {
	h, mock := newTestServer(t)
	register(t, h, mock, "john", goodPassword)

	unknown := postJSON(t, h, "/api/authentication/login", credentials("ghost", goodPassword))
	wrongPass := postJSON(t, h, "/api/authentication/login", credentials("john", "Wr0ngPass!"))

	if unknown.Code != http.StatusUnauthorized || wrongPass.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 for both, got %d and %d", unknown.Code, wrongPass.Code)
	}
	if unknown.Body.String() != wrongPass.Body.String() {
		t.Fatalf("responses must be indistinguishable:\n%s\n%s",
			unknown.Body.String(), wrongPass.Body.String())
	}
}

func TestHandleRefreshToken_Rotates(t *testing.T) {
	h, mock := newTestServer(t)
	register(t, h, mock, "john", goodPassword)
	_, cookie := login(t, h, mock, "john", goodPassword)

	expectTx(mock)
	rr := postJSON(t, h, "/api/authentication/refresh-token", struct{}{}, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.AccessToken == "" {
		t.Fatalf("refresh must return a new access token")
	}

	var rotated *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == RefreshTokenCookieName {
			rotated = c
		}
	}
	if rotated == nil || rotated.Value == cookie.Value {
		t.Fatalf("refresh must set a new cookie value")
	}

	// The consumed value must be dead.
	rr = postJSON(t, h, "/api/authentication/refresh-token", struct{}{}, cookie)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("replayed cookie: want 401, got %d", rr.Code)
	}
}

func TestHandleRefreshToken_MissingCookie(t *testing.T) {
	h, _ := newTestServer(t)

	rr := postJSON(t, h, "/api/authentication/refresh-token", struct{}{})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rr.Code)
	}
}

func TestHandleRefreshToken_UnknownValue(t *testing.T) {
	h, _ := newTestServer(t)

	bogus := &http.Cookie{Name: RefreshTokenCookieName, Value: "neverissued"}
	rr := postJSON(t, h, "/api/authentication/refresh-token", struct{}{}, bogus)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rr.Code)
	}
}

func TestHandleCurrentUser(t *testing.T) {
	h, mock := newTestServer(t)
	register(t, h, mock, "john", goodPassword)
	access, _ := login(t, h, mock, "john", goodPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", access))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body userResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Username != "john" || body.Role != models.RoleBasicUser {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHandleCurrentUser_Unauthenticated(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rr.Code)
	}
}

func TestHandleListUsers(t *testing.T) {
	h, mock := newTestServer(t)
	register(t, h, mock, "john", goodPassword)
	register(t, h, mock, "jane", goodPassword)
	access, _ := login(t, h, mock, "john", goodPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", access))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body []userResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("expected 2 users, got %d", len(body))
	}
}
