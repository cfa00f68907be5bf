package identity

import (
	"crypto"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/clerktest"
	"github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biketowork/models"
)

func TestClerkProvider_SignInRedirect(t *testing.T) {
	provider := NewClerkProvider("sk_test_123", "https://accounts.example.com/sign-in", "https://rides.example.com/")

	w := httptest.NewRecorder()
	provider.Login(w, httptest.NewRequest(http.MethodGet, "/accounts/login/", nil), "/new/")

	assert.Equal(t, http.StatusFound, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", location.Host)
	assert.Equal(t, "/sign-in", location.Path)
	assert.Equal(t, "https://rides.example.com/accounts/complete/?next=%2Fnew%2F", location.Query().Get("redirect_url"))
}

func TestClerkProvider_SignInRedirectKeepsQuery(t *testing.T) {
	provider := NewClerkProvider("sk_test_123", "https://accounts.example.com/sign-in?locale=en", "http://localhost:8080")

	redirect := provider.signInRedirect("/")

	location, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "en", location.Query().Get("locale"))
	assert.Equal(t, "http://localhost:8080/accounts/complete/?next=%2F", location.Query().Get("redirect_url"))
}

func TestClerkProvider_CurrentIdentityWithoutToken(t *testing.T) {
	provider := NewClerkProvider("sk_test_123", "https://accounts.example.com/sign-in", "http://localhost:8080")

	identity, err := provider.CurrentIdentity(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.True(t, identity.IsAbsent())
}

// stubClerkAPI serves the parts of the Clerk backend API the provider calls
type stubClerkAPI struct {
	server      *httptest.Server
	jwksFetches atomic.Int32

	mu      sync.Mutex
	revoked []string
}

func newStubClerkAPI(t *testing.T, keys map[string]crypto.PublicKey) *stubClerkAPI {
	t.Helper()

	set := jose.JSONWebKeySet{}
	for kid, key := range keys {
		set.Keys = append(set.Keys, jose.JSONWebKey{Key: key, KeyID: kid, Algorithm: "RS256", Use: "sig"})
	}
	body, err := json.Marshal(set)
	require.NoError(t, err)

	stub := &stubClerkAPI{}
	router := http.NewServeMux()
	router.HandleFunc("GET /jwks", func(w http.ResponseWriter, r *http.Request) {
		stub.jwksFetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})
	router.HandleFunc("POST /sessions/{id}/revoke", func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.revoked = append(stub.revoked, r.PathValue("id"))
		stub.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"session","id":"` + r.PathValue("id") + `","status":"revoked"}`))
	})
	stub.server = httptest.NewServer(router)
	t.Cleanup(stub.server.Close)

	return stub
}

func (s *stubClerkAPI) provider() *ClerkProvider {
	return newClerkProvider(&clerk.ClientConfig{
		BackendConfig: clerk.BackendConfig{
			Key: clerk.String("sk_test_123"),
			URL: clerk.String(s.server.URL),
		},
	}, "https://accounts.example.com/sign-in", "https://rides.example.com")
}

func (s *stubClerkAPI) revokedSessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.revoked...)
}

func sessionClaims(subject string, expiresAt time.Time) map[string]any {
	return map[string]any{
		"sub": subject,
		"iss": "https://clerk.rides.example.com",
		"sid": "sess_123",
		"iat": time.Now().Add(-time.Minute).Unix(),
		"nbf": time.Now().Add(-time.Minute).Unix(),
		"exp": expiresAt.Unix(),
	}
}

func TestClerkProvider_CurrentIdentityVerifiesSessionToken(t *testing.T) {
	validToken, validKey := clerktest.GenerateJWT(t, sessionClaims("user_123", time.Now().Add(time.Minute)), "kid-valid")
	expiredToken, expiredKey := clerktest.GenerateJWT(t, sessionClaims("user_123", time.Now().Add(-2*time.Minute)), "kid-expired")
	forgedToken, _ := clerktest.GenerateJWT(t, sessionClaims("user_admin", time.Now().Add(time.Minute)), "kid-valid")
	unknownToken, _ := clerktest.GenerateJWT(t, sessionClaims("user_123", time.Now().Add(time.Minute)), "kid-unknown")

	stub := newStubClerkAPI(t, map[string]crypto.PublicKey{
		"kid-valid":   validKey,
		"kid-expired": expiredKey,
	})
	provider := stub.provider()

	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{name: "valid session", token: validToken, expected: "user_123"},
		{name: "expired session", token: expiredToken},
		{name: "signed by another key", token: forgedToken},
		{name: "unknown key id", token: unknownToken},
		{name: "garbage", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/accounts/complete/?next=%2F", nil)
			r.AddCookie(&http.Cookie{Name: ClerkSessionCookie, Value: tt.token})

			identity, err := provider.CurrentIdentity(r)
			require.NoError(t, err)

			if tt.expected == "" {
				assert.True(t, identity.IsAbsent())
				return
			}
			assert.Equal(t, tt.expected, identity.MustGet())
		})
	}

	t.Run("signing keys are cached", func(t *testing.T) {
		before := stub.jwksFetches.Load()
		for range 3 {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "Bearer "+validToken)
			identity, err := provider.CurrentIdentity(r)
			require.NoError(t, err)
			assert.Equal(t, "user_123", identity.MustGet())
		}
		assert.Equal(t, before, stub.jwksFetches.Load())
	})
}

func TestClerkProvider_LogoutRevokesSession(t *testing.T) {
	token, key := clerktest.GenerateJWT(t, sessionClaims("user_123", time.Now().Add(time.Minute)), "kid-valid")
	stub := newStubClerkAPI(t, map[string]crypto.PublicKey{"kid-valid": key})
	provider := stub.provider()

	r := httptest.NewRequest(http.MethodPost, "/accounts/logout/", nil)
	r.AddCookie(&http.Cookie{Name: ClerkSessionCookie, Value: token})
	w := httptest.NewRecorder()

	provider.Logout(w, r)

	assert.Equal(t, []string{"sess_123"}, stub.revokedSessions())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestClerkProvider_Logout(t *testing.T) {
	provider := NewClerkProvider("sk_test_123", "https://accounts.example.com/sign-in", "https://rides.example.com")
	w := httptest.NewRecorder()

	provider.Logout(w, httptest.NewRequest(http.MethodGet, "/accounts/logout/", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ClerkSessionCookie, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, "clerk", provider.Name())
}

func TestSessionToken(t *testing.T) {
	bearer := httptest.NewRequest(http.MethodGet, "/", nil)
	bearer.Header.Set("Authorization", "Bearer header-token")
	bearer.AddCookie(&http.Cookie{Name: ClerkSessionCookie, Value: "cookie-token"})
	assert.Equal(t, "header-token", sessionToken(bearer))

	cookie := httptest.NewRequest(http.MethodGet, "/", nil)
	cookie.AddCookie(&http.Cookie{Name: ClerkSessionCookie, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", sessionToken(cookie))

	assert.Equal(t, "", sessionToken(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestProfileFromClerkUser(t *testing.T) {
	emails := []*clerk.EmailAddress{
		{ID: "idn_1", EmailAddress: "old@example.com"},
		{ID: "idn_2", EmailAddress: "alice@example.com"},
	}

	tests := []struct {
		name     string
		user     *clerk.User
		expected models.Profile
	}{
		{
			name:     "username and primary email",
			user:     &clerk.User{Username: clerk.String("alice"), EmailAddresses: emails, PrimaryEmailAddressID: clerk.String("idn_2")},
			expected: models.Profile{Username: "alice", Email: "alice@example.com"},
		},
		{
			name:     "email local part without username",
			user:     &clerk.User{EmailAddresses: emails, PrimaryEmailAddressID: clerk.String("idn_2")},
			expected: models.Profile{Username: "alice", Email: "alice@example.com"},
		},
		{
			name:     "first email without primary",
			user:     &clerk.User{EmailAddresses: emails},
			expected: models.Profile{Username: "old", Email: "old@example.com"},
		},
		{
			name:     "first name only",
			user:     &clerk.User{FirstName: clerk.String("Alice")},
			expected: models.Profile{Username: "Alice"},
		},
		{
			name:     "nothing known",
			user:     &clerk.User{},
			expected: models.Profile{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, profileFromClerkUser(tt.user))
		})
	}
}
