package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virginus01/afobata-core/internal/auth"
	"github.com/virginus01/afobata-core/internal/common"
)

func newService(t *testing.T) *auth.Service {
	t.Helper()
	svc, err := auth.NewService(auth.Config{Secret: "test-secret", AccessTokenTTL: time.Minute})
	require.NoError(t, err)
	return svc
}

func TestParseAccessTokenRoundTrip(t *testing.T) {
	svc := newService(t)
	token, expiry, err := svc.IssueAccessToken("user_1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), expiry, 5*time.Second)

	subject, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user_1", subject)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	svc := newService(t)
	svc.WithNow(func() time.Time { return time.Now().Add(-time.Hour) })
	token, _, err := svc.IssueAccessToken("user_1")
	require.NoError(t, err)

	svc.WithNow(time.Now)
	_, err = svc.ParseAccessToken(token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	svc := newService(t)
	other, err := auth.NewService(auth.Config{Secret: "different-secret"})
	require.NoError(t, err)
	token, _, err := other.IssueAccessToken("user_1")
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(token)
	require.Error(t, err)
}

func TestRequireAuthMiddleware(t *testing.T) {
	svc := newService(t)
	mw := auth.Middleware{Service: svc}

	var gotUser string
	handler := mw.RequireAuth(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotUser, _ = common.UserID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/revenue/withdraw", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := svc.IssueAccessToken("user_1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/revenue/withdraw", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user_1", gotUser)
}
