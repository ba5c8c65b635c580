package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentgate/auth-service/config"
	"github.com/agentgate/auth-service/internal/core/domain"
	logicv1 "github.com/agentgate/auth-service/internal/logic/v1"
	webv1 "github.com/agentgate/auth-service/internal/web/v1"
)

// memoryRepo is an in-memory AccountRepository for handler tests.
type memoryRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.AccountRow
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: make(map[string]*domain.AccountRow), nextID: 1}
}

func (m *memoryRepo) GetByCode(_ context.Context, code string) (*domain.AccountRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.accounts[code]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *memoryRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.accounts[code]
	return ok, nil
}

func (m *memoryRepo) Create(_ context.Context, code, username, hash string) (*domain.AccountRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[code]; ok {
		return nil, domain.ErrDuplicateAccount
	}
	row := &domain.AccountRow{
		ID: m.nextID, AccountCode: code, Username: username,
		PasswordHash: hash, CreatedAt: time.Now(),
	}
	m.nextID++
	m.accounts[code] = row
	cp := *row
	return &cp, nil
}

func (m *memoryRepo) UpdateLastLogin(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, row := range m.accounts {
		if row.ID == id {
			row.LastLogin = &now
		}
	}
	return nil
}

func (m *memoryRepo) delete(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, code)
}

func newTestRouter(delivery string) (*gin.Engine, *memoryRepo) {
	gin.SetMode(gin.TestMode)

	repo := newMemoryRepo()
	svc := logicv1.NewAuthService(
		repo,
		logicv1.NewArgon2idHasher(),
		logicv1.NewTokenCodec([]byte("handler-test-key")),
		30*time.Minute,
	)
	handler := webv1.NewHandler(svc, config.AuthConfig{
		TokenTTL:      30 * time.Minute,
		TokenDelivery: delivery,
	})

	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r, repo
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, fn := range mutate {
		fn(req)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerModeEndToEnd(t *testing.T) {
	r, _ := newTestRouter(config.DeliveryBearer)

	// Register
	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", gin.H{
		"account_code": "A1", "username": "alice", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created domain.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "A1", created.AccountCode)
	assert.NotContains(t, w.Body.String(), "password")

	// Login
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{
		"account_code": "A1", "password": "secret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tok domain.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	assert.Equal(t, "bearer", tok.TokenType)
	require.NotEmpty(t, tok.AccessToken)

	withToken := func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	}

	// Current user
	w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", nil, withToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me domain.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "A1", me.AccountCode)

	// Wrong password
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{
		"account_code": "A1", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Logout does not revoke: the old token still resolves until expiry.
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", nil, withToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newTestRouter(config.DeliveryBearer)

	t.Run("duplicate account code", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", gin.H{
			"account_code": "DUP", "password": "secret",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, r, http.MethodPost, "/api/v1/auth/register", gin.H{
			"account_code": "DUP", "password": "other",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("first account survives the duplicate attempt", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{
			"account_code": "DUP", "password": "secret",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", gin.H{
			"account_code": "A2",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("blank username defaults", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", gin.H{
			"account_code": "A3", "password": "secret",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var acc domain.Account
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acc))
		assert.Equal(t, domain.DefaultUsername, acc.Username)
	})
}

func TestGetMeUnauthenticated(t *testing.T) {
	r, repo := newTestRouter(config.DeliveryBearer)

	t.Run("no token", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/v1/auth/me", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer garbage")
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("account deleted after issuance", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", gin.H{
			"account_code": "GONE", "password": "secret",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{
			"account_code": "GONE", "password": "secret",
		})
		require.Equal(t, http.StatusOK, w.Code)
		var tok domain.TokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))

		repo.delete("GONE")

		w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", nil, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCookieMode(t *testing.T) {
	r, _ := newTestRouter(config.DeliveryCookie)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", gin.H{
		"account_code": "C1", "username": "carol", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Login sets the access token cookie, body carries the account only.
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", gin.H{
		"account_code": "C1", "password": "secret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "access_token")

	cookies := w.Result().Cookies()
	var tokenCookie *http.Cookie
	for _, ck := range cookies {
		if ck.Name == webv1.AccessTokenCookie {
			tokenCookie = ck
		}
	}
	require.NotNil(t, tokenCookie, "login must set the access token cookie")
	assert.True(t, tokenCookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, tokenCookie.SameSite)
	assert.Equal(t, 1800, tokenCookie.MaxAge)
	require.NotEmpty(t, tokenCookie.Value)

	// The cookie authenticates /me.
	w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", nil, func(req *http.Request) {
		req.AddCookie(tokenCookie)
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me domain.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "C1", me.AccountCode)
	assert.Equal(t, "carol", me.Username)

	// Logout clears the cookie by name.
	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	var cleared *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == webv1.AccessTokenCookie {
			cleared = ck
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}
