package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrJamesThe3rd/bursar/internal/http/respond"
)

var ErrInvalidToken = errors.New("invalid token")

type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
)

// Identity is the authenticated caller.
type Identity struct {
	Subject string
	Role    Role
}

type claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(token string) (Identity, error) {
	var c claims

	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if c.Subject == "" || c.Role == "" {
		return Identity{}, fmt.Errorf("%w: missing subject or role", ErrInvalidToken)
	}

	return Identity{Subject: c.Subject, Role: c.Role}, nil
}

// Issue signs a token for id. Logins are handled elsewhere; this serves tools
// and tests.
func (v *Verifier) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Middleware rejects requests without a valid bearer token.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				respond.Status(w, http.StatusUnauthorized, "unauthorized", "Not authorized, no token")
				return
			}

			id, err := v.Verify(token)
			if err != nil {
				respond.Status(w, http.StatusUnauthorized, "unauthorized", "Not authorized, token failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole admits only callers holding one of roles. It must run after
// Middleware.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				respond.Status(w, http.StatusUnauthorized, "unauthorized", "Not authorized")
				return
			}

			if !slices.Contains(roles, id.Role) {
				respond.Status(w, http.StatusForbidden, "forbidden",
					fmt.Sprintf("Role %s is not authorized to access this route", id.Role))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
