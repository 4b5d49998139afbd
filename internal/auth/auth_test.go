package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/auth"
)

const secret = "test-secret"

func TestVerifier(t *testing.T) {
	v := auth.NewVerifier(secret)

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := v.Issue(auth.Identity{Subject: "u-1", Role: auth.RoleAccountant}, time.Hour)
		require.NoError(t, err)

		id, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, auth.Identity{Subject: "u-1", Role: auth.RoleAccountant}, id)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := v.Issue(auth.Identity{Subject: "u-1", Role: auth.RoleAdmin}, -time.Minute)
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := auth.NewVerifier("other").Issue(auth.Identity{Subject: "u-1", Role: auth.RoleAdmin}, time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("UnexpectedAlgorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "u-1", "role": "admin"}).
			SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("MissingRole", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1"}).
			SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = v.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestMiddleware(t *testing.T) {
	v := auth.NewVerifier(secret)

	token, err := v.Issue(auth.Identity{Subject: "u-7", Role: auth.RoleTeacher}, time.Hour)
	require.NoError(t, err)

	var seen auth.Identity

	handler := auth.Middleware(v)(auth.RequireRole(auth.RoleTeacher, auth.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = auth.FromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}),
	))

	studentToken, err := v.Issue(auth.Identity{Subject: "u-8", Role: auth.RoleStudent}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "NoHeader", header: "", want: http.StatusUnauthorized},
		{name: "NotBearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "Garbage", header: "Bearer abc.def.ghi", want: http.StatusUnauthorized},
		{name: "WrongRole", header: "Bearer " + studentToken, want: http.StatusForbidden},
		{name: "Allowed", header: "Bearer " + token, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, "u-7", seen.Subject)
}
