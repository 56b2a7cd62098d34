package standingsauth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const testSecret = "test-secret-at-least-32-chars-long!!"

func mustProvider(t *testing.T, secret, issuer string) Provider {
	t.Helper()
	p, err := NewProvider(secret, issuer)
	require.NoError(t, err)
	return p
}

func TestProviderGenerateAndValidate(t *testing.T) {
	p := mustProvider(t, testSecret, "tabroom")

	tests := []struct {
		name      string
		token     func(t *testing.T) string
		validator Provider
		wantErr   error
	}{
		{
			name: "valid",
			token: func(t *testing.T) string {
				tok, err := p.GenerateToken("director-1", RoleAdmin, time.Hour)
				require.NoError(t, err)
				return tok
			},
			validator: p,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				tok, err := p.GenerateToken("director-1", RoleAdmin, -time.Hour)
				require.NoError(t, err)
				return tok
			},
			validator: p,
			wantErr:   ErrExpiredToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				tok, err := p.GenerateToken("director-1", RoleAdmin, time.Hour)
				require.NoError(t, err)
				return tok
			},
			validator: mustProvider(t, "another-secret", "tabroom"),
			wantErr:   ErrInvalidSignature,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				tok, err := mustProvider(t, testSecret, "elsewhere").GenerateToken("x", RoleAdmin, time.Hour)
				require.NoError(t, err)
				return tok
			},
			validator: p,
			wantErr:   ErrInvalidToken,
		},
		{
			name:      "malformed",
			token:     func(*testing.T) string { return "not.a.jwt" },
			validator: p,
			wantErr:   ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tt.validator.ValidateToken(tt.token(t))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "director-1", claims.Subject)
			assert.Equal(t, RoleAdmin, claims.Role)
			assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
		})
	}
}

func TestNewProviderRequiresSecret(t *testing.T) {
	_, err := NewProvider("", "")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestRequireRole(t *testing.T) {
	p := mustProvider(t, testSecret, "")
	admin, err := p.GenerateToken("d1", RoleAdmin, time.Hour)
	require.NoError(t, err)
	viewer, err := p.GenerateToken("v1", RoleViewer, time.Hour)
	require.NoError(t, err)

	var seen *Claims
	h := RequireRole(p, slog.New(slog.NewTextHandler(io.Discard, nil)), RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "viewer", header: "Bearer " + viewer, want: http.StatusForbidden},
		{name: "admin", header: "Bearer " + admin, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/events/e1/ballots", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	require.NotNil(t, seen)
	assert.Equal(t, "d1", seen.Subject)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2)
	h := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}
