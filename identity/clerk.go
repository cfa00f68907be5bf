package identity

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwks"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/clerk/clerk-sdk-go/v2/session"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/samber/mo"

	"biketowork/models"
)

// ClerkSessionCookie is where clerk-js keeps the short-lived session token.
// The browser script in the page layout refreshes it before it expires.
const ClerkSessionCookie = "__session"

const jwkCacheTTL = time.Hour

type cachedJWK struct {
	key       *clerk.JSONWebKey
	expiresAt time.Time
}

type ClerkProvider struct {
	jwksClient     *jwks.Client
	usersClient    *user.Client
	sessionsClient *session.Client
	signInURL      string
	publicURL      string
	secure         bool

	mu   sync.RWMutex
	keys map[string]cachedJWK
}

func NewClerkProvider(secretKey, signInURL, publicURL string) *ClerkProvider {
	return newClerkProvider(&clerk.ClientConfig{
		BackendConfig: clerk.BackendConfig{
			Key: clerk.String(secretKey),
		},
	}, signInURL, publicURL)
}

func newClerkProvider(config *clerk.ClientConfig, signInURL, publicURL string) *ClerkProvider {
	return &ClerkProvider{
		jwksClient:     jwks.NewClient(config),
		usersClient:    user.NewClient(config),
		sessionsClient: session.NewClient(config),
		signInURL:      signInURL,
		publicURL:      strings.TrimSuffix(publicURL, "/"),
		secure:         strings.HasPrefix(publicURL, "https://"),
		keys:           map[string]cachedJWK{},
	}
}

func (p *ClerkProvider) Name() string {
	return "clerk"
}

func (p *ClerkProvider) CurrentIdentity(r *http.Request) (mo.Option[string], error) {
	token := sessionToken(r)
	if token == "" {
		return mo.None[string](), nil
	}

	claims, err := p.verify(r.Context(), token)
	if err != nil {
		log.Printf("❌ Clerk session verification failed: %v", err)
		return mo.None[string](), nil
	}

	return mo.Some(claims.Subject), nil
}

func (p *ClerkProvider) verify(ctx context.Context, token string) (*clerk.SessionClaims, error) {
	decoded, err := jwt.Decode(ctx, &jwt.DecodeParams{Token: token})
	if err != nil {
		return nil, fmt.Errorf("malformed session token: %w", err)
	}

	jwk, err := p.signingKey(ctx, decoded.KeyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get signing key %q: %w", decoded.KeyID, err)
	}

	return jwt.Verify(ctx, &jwt.VerifyParams{
		Token: token,
		JWK:   jwk,
	})
}

// signingKey returns the JSON web key for kid, fetching the key set from Clerk at most once an hour per key
func (p *ClerkProvider) signingKey(ctx context.Context, kid string) (*clerk.JSONWebKey, error) {
	p.mu.RLock()
	cached, ok := p.keys[kid]
	p.mu.RUnlock()
	if ok && time.Now().Before(cached.expiresAt) {
		return cached.key, nil
	}

	jwk, err := jwt.GetJSONWebKey(ctx, &jwt.GetJSONWebKeyParams{
		KeyID:      kid,
		JWKSClient: p.jwksClient,
	})
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.keys[kid] = cachedJWK{key: jwk, expiresAt: time.Now().Add(jwkCacheTTL)}
	p.mu.Unlock()
	return jwk, nil
}

func (p *ClerkProvider) LookupProfile(ctx context.Context, subject string) (models.Profile, error) {
	clerkUser, err := p.usersClient.Get(ctx, subject)
	if err != nil {
		return models.Profile{}, fmt.Errorf("failed to get clerk user %s: %w", subject, err)
	}

	return profileFromClerkUser(clerkUser), nil
}

func (p *ClerkProvider) Login(w http.ResponseWriter, r *http.Request, next string) {
	http.Redirect(w, r, p.signInRedirect(next), http.StatusFound)
}

// Logout revokes the Clerk session as well, otherwise clerk-js would sign the browser straight back in
func (p *ClerkProvider) Logout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, ClerkSessionCookie, p.secure)

	token := sessionToken(r)
	if token == "" {
		return
	}
	claims, err := p.verify(r.Context(), token)
	if err != nil || claims.SessionID == "" {
		return
	}
	if _, err := p.sessionsClient.Revoke(r.Context(), &session.RevokeParams{ID: claims.SessionID}); err != nil {
		log.Printf("❌ Failed to revoke Clerk session %s: %v", claims.SessionID, err)
		return
	}
	log.Printf("👋 Revoked Clerk session %s", claims.SessionID)
}

// signInRedirect sends the browser to the hosted sign-in page, which returns it to the
// social-login callback with next preserved.
func (p *ClerkProvider) signInRedirect(next string) string {
	callback := p.publicURL + "/accounts/complete/?next=" + url.QueryEscape(next)

	separator := "?"
	if strings.Contains(p.signInURL, "?") {
		separator = "&"
	}
	return p.signInURL + separator + "redirect_url=" + url.QueryEscape(callback)
}

func sessionToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := r.Cookie(ClerkSessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func profileFromClerkUser(u *clerk.User) models.Profile {
	profile := models.Profile{}

	for _, address := range u.EmailAddresses {
		if address == nil {
			continue
		}
		if profile.Email == "" || (u.PrimaryEmailAddressID != nil && address.ID == *u.PrimaryEmailAddressID) {
			profile.Email = address.EmailAddress
		}
	}

	switch {
	case u.Username != nil && *u.Username != "":
		profile.Username = *u.Username
	case profile.Email != "":
		profile.Username, _, _ = strings.Cut(profile.Email, "@")
	case u.FirstName != nil && *u.FirstName != "":
		profile.Username = *u.FirstName
	}

	return profile
}
