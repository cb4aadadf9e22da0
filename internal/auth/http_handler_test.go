package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *MockRepository) {
	t.Helper()
	repo := NewMockRepository(gomock.NewController(t))
	return NewHTTPHandler(NewService(repo, testSecret), zap.NewNop()), repo
}

func postJSON(target, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestSignupHandler(t *testing.T) {
	t.Run("201 with user and token", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		rec := httptest.NewRecorder()
		h.Signup(rec, postJSON("/auth/signup", `{"name":"Reader","email":"reader@example.com","password":"Sup3rSecret"}`))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"token"`)
		assert.Contains(t, rec.Body.String(), `"reader@example.com"`)
		assert.NotContains(t, rec.Body.String(), "Sup3rSecret")
	})

	t.Run("409 on duplicate email", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(ErrAlreadyExists)

		rec := httptest.NewRecorder()
		h.Signup(rec, postJSON("/auth/signup", `{"name":"Reader","email":"reader@example.com","password":"Sup3rSecret"}`))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "ALREADY_EXISTS")
	})

	t.Run("400 on weak password", func(t *testing.T) {
		h, _ := newTestHandler(t)
		rec := httptest.NewRecorder()
		h.Signup(rec, postJSON("/auth/signup", `{"name":"Reader","email":"reader@example.com","password":"weakpass"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "WEAK_PASSWORD")
	})

	t.Run("400 on invalid body", func(t *testing.T) {
		h, _ := newTestHandler(t)
		rec := httptest.NewRecorder()
		h.Signup(rec, postJSON("/auth/signup", `{not json`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("400 on missing fields", func(t *testing.T) {
		h, _ := newTestHandler(t)
		rec := httptest.NewRecorder()
		h.Signup(rec, postJSON("/auth/signup", `{"email":"not-an-email"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("200 with token", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByEmail(gomock.Any(), "reader@example.com").Return(storedUser(t, RoleUser), nil)

		rec := httptest.NewRecorder()
		h.Login(rec, postJSON("/auth/login", `{"email":"reader@example.com","password":"Sup3rSecret"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"token"`)
	})

	t.Run("401 on bad credentials", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByEmail(gomock.Any(), "reader@example.com").Return(User{}, ErrInvalidCredentials)

		rec := httptest.NewRecorder()
		h.Login(rec, postJSON("/auth/login", `{"email":"reader@example.com","password":"WrongPass1"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")
	})

	t.Run("unknown email collapses to the same 401", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByEmail(gomock.Any(), "ghost@example.com").Return(User{}, ErrInvalidCredentials)

		rec := httptest.NewRecorder()
		h.Login(rec, postJSON("/auth/login", `{"email":"ghost@example.com","password":"Sup3rSecret"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminLoginHandler(t *testing.T) {
	t.Run("401 for a non-admin account", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByEmail(gomock.Any(), "reader@example.com").Return(storedUser(t, RoleUser), nil)

		rec := httptest.NewRecorder()
		h.AdminLogin(rec, postJSON("/auth/admin/login", `{"email":"reader@example.com","password":"Sup3rSecret"}`))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("200 for an admin", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().GetByEmail(gomock.Any(), "reader@example.com").Return(storedUser(t, RoleAdmin), nil)

		rec := httptest.NewRecorder()
		h.AdminLogin(rec, postJSON("/auth/admin/login", `{"email":"reader@example.com","password":"Sup3rSecret"}`))
		require.Equal(t, http.StatusOK, rec.Code)

		token := rec.Body.String()
		assert.Contains(t, token, `"role":"ADMIN"`)
	})
}
