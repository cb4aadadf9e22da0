package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/abhajavat-web/efvb/internal/auth"
	"github.com/abhajavat-web/efvb/internal/catalog"
	"github.com/abhajavat-web/efvb/internal/platform/crypto"
)

// TestUser is a mock user for testing
var TestUser = auth.User{
	ID:        "test-user-id-123",
	Name:      "Test Reader",
	Email:     "reader@example.com",
	Role:      auth.RoleUser,
	CreatedAt: time.Now(),
}

// TestAdminUser is a mock admin user for testing
var TestAdminUser = auth.User{
	ID:        "test-admin-id-456",
	Name:      "Test Admin",
	Email:     "admin@example.com",
	Role:      auth.RoleAdmin,
	CreatedAt: time.Now(),
}

// TestEbook is a mock digital product for testing
var TestEbook = catalog.Product{
	ID:        "test-ebook-id-789",
	Title:     "THE ORIGIN CODE",
	Type:      catalog.TypeEbook,
	Price:     299,
	FilePath:  "books/origin.epub",
	Thumbnail: "covers/origin.jpg",
	CreatedAt: time.Now(),
	UpdatedAt: time.Now(),
}

// GenerateTestToken generates a JWT token for testing
func GenerateTestToken(secret, userID, email, role string) string {
	token, _ := crypto.GenerateToken(secret, userID, email, role, time.Hour)
	return token
}

// GenerateExpiredToken generates an expired JWT token for testing
func GenerateExpiredToken(secret, userID, email, role string) string {
	c := crypto.Claims{
		Sub:   userID,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	token, _ := t.SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body interface{}) *http.Request {
	var r *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	r.Header.Set("Content-Type", "application/json")
	return r
}

// WithBearer attaches an Authorization header.
func WithBearer(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}
