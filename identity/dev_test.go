package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevProvider(now time.Time) *DevProvider {
	p := NewDevProvider("test-secret", time.Hour, false)
	p.now = func() time.Time { return now }
	return p
}

func requestWithSession(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DevSessionCookie, Value: token})
	return r
}

func TestDevProvider_SessionRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	provider := newTestDevProvider(now)

	token, err := provider.IssueToken("alice")
	require.NoError(t, err)

	identity, err := provider.CurrentIdentity(requestWithSession(token))
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.MustGet())
}

func TestDevProvider_CurrentIdentityAnonymous(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	provider := newTestDevProvider(now)
	validToken, err := provider.IssueToken("alice")
	require.NoError(t, err)

	otherProvider := NewDevProvider("another-secret", time.Hour, false)
	otherProvider.now = provider.now
	foreignToken, err := otherProvider.IssueToken("alice")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alice",
		"iss": devIssuer,
		"exp": now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		request *http.Request
	}{
		{name: "no cookie", request: httptest.NewRequest(http.MethodGet, "/", nil)},
		{name: "garbage cookie", request: requestWithSession("not-a-jwt")},
		{name: "signed with another secret", request: requestWithSession(foreignToken)},
		{name: "unsigned token", request: requestWithSession(unsigned)},
		{name: "tampered token", request: requestWithSession(validToken[:len(validToken)-2] + "xx")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := provider.CurrentIdentity(tt.request)
			require.NoError(t, err)
			assert.True(t, identity.IsAbsent())
		})
	}
}

func TestDevProvider_ExpiredSession(t *testing.T) {
	issuedAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	provider := newTestDevProvider(issuedAt)
	token, err := provider.IssueToken("alice")
	require.NoError(t, err)

	provider.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }

	identity, err := provider.CurrentIdentity(requestWithSession(token))
	require.NoError(t, err)
	assert.True(t, identity.IsAbsent())
}

func TestDevProvider_LoginForm(t *testing.T) {
	provider := NewDevProvider("test-secret", time.Hour, false)

	w := httptest.NewRecorder()
	provider.Login(w, httptest.NewRequest(http.MethodGet, "/accounts/login/?next=/new/", nil), "/new/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="username"`)
	assert.Contains(t, w.Body.String(), `name="next" value="/new/"`)
	assert.Empty(t, w.Result().Cookies())
}

func TestDevProvider_LoginSubmit(t *testing.T) {
	provider := NewDevProvider("test-secret", time.Hour, false)

	form := url.Values{"username": {" alice "}, "next": {"/new/"}}
	r := httptest.NewRequest(http.MethodPost, "/accounts/login/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	provider.Login(w, r, "/new/")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/new/", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DevSessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	identity, err := provider.CurrentIdentity(requestWithSession(cookies[0].Value))
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.MustGet())
}

func TestDevProvider_LoginRejectsBadUsername(t *testing.T) {
	provider := NewDevProvider("test-secret", time.Hour, false)

	form := url.Values{"username": {"<script>"}}
	r := httptest.NewRequest(http.MethodPost, "/accounts/login/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	provider.Login(w, r, "/")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, w.Result().Cookies())
	assert.NotContains(t, w.Body.String(), "<script>")
	assert.Contains(t, w.Body.String(), "&lt;script&gt;")
}

func TestDevProvider_Logout(t *testing.T) {
	provider := NewDevProvider("test-secret", time.Hour, false)
	w := httptest.NewRecorder()

	provider.Logout(w, httptest.NewRequest(http.MethodGet, "/accounts/logout/", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DevSessionCookie, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestDevProvider_LookupProfile(t *testing.T) {
	provider := NewDevProvider("test-secret", time.Hour, false)

	profile, err := provider.LookupProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "dev", provider.Name())
}
