// Package auth resolves the caller of session routes from a bearer token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cx-tal-miterani/flight-seat-booking/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTypeAccess = "access"

var (
	ErrMissingToken = errors.New("authorization header is required")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims carried by access tokens
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone,omitempty"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

func (c *Claims) User() *models.User {
	return &models.User{ID: c.UserID, Email: c.Email, Username: c.Username, Phone: c.Phone}
}

// Guest is the caller when authentication is disabled.
var Guest = models.User{ID: "guest", Username: "guest"}

type Authenticator struct {
	secret []byte
	now    func() time.Time
}

// New returns an Authenticator. An empty secret disables token checks and
// every request runs as Guest.
func New(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

func (a *Authenticator) Enabled() bool { return len(a.secret) > 0 }

// Issue signs an access token for a user.
func (a *Authenticator) Issue(user *models.User, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Phone:    user.Phone,
		Type:     tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates a token and returns its claims.
func (a *Authenticator) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Type != tokenTypeAccess || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware puts the authenticated user in the request context, answering
// 401 when the token is missing or invalid.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			guest := Guest
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &guest)))
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			unauthorized(w, ErrMissingToken)
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(w, errors.New("authorization header format must be Bearer {token}"))
			return
		}

		claims, err := a.Parse(parts[1])
		if err != nil {
			unauthorized(w, ErrInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.User())))
	})
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "code": "UNAUTHORIZED"})
}

type ctxKey struct{}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ctxKey{}).(*models.User)
	return user, ok && user != nil
}
