package identity

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/mo"

	"biketowork/models"
)

// DevSessionCookie holds the signed session issued by the dev provider.
const DevSessionCookie = "biketowork_session"

const devIssuer = "biketowork-dev"

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

//go:embed dev_login.html
var devLoginHTML string

var devLoginTemplate = template.Must(template.New("dev_login").Parse(devLoginHTML))

type devClaims struct {
	jwt.RegisteredClaims
}

// DevProvider signs anyone in under the username they type.
// It exists for local development where no Clerk instance is available.
type DevProvider struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewDevProvider(secret string, ttl time.Duration, secure bool) *DevProvider {
	return &DevProvider{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

func (p *DevProvider) Name() string {
	return "dev"
}

func (p *DevProvider) CurrentIdentity(r *http.Request) (mo.Option[string], error) {
	cookie, err := r.Cookie(DevSessionCookie)
	if err != nil || cookie.Value == "" {
		return mo.None[string](), nil
	}

	claims := &devClaims{}
	_, err = jwt.ParseWithClaims(
		cookie.Value,
		claims,
		func(t *jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(devIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		log.Printf("❌ Dev session rejected: %v", err)
		return mo.None[string](), nil
	}

	if !usernamePattern.MatchString(claims.Subject) {
		return mo.None[string](), nil
	}

	return mo.Some(claims.Subject), nil
}

func (p *DevProvider) LookupProfile(_ context.Context, subject string) (models.Profile, error) {
	return models.Profile{Username: subject}, nil
}

func (p *DevProvider) Login(w http.ResponseWriter, r *http.Request, next string) {
	if r.Method != http.MethodPost {
		p.renderLogin(w, http.StatusOK, "", "", next)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	if !usernamePattern.MatchString(username) {
		p.renderLogin(w, http.StatusUnprocessableEntity, username,
			"Enter a username of letters, digits and @/./+/-/_ characters.", next)
		return
	}

	token, err := p.IssueToken(username)
	if err != nil {
		log.Printf("❌ Failed to sign dev session: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     DevSessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(p.ttl.Seconds()),
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})

	log.Printf("✅ Dev session issued for: %s", username)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (p *DevProvider) Logout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, DevSessionCookie, p.secure)
}

// IssueToken signs a session token for username.
func (p *DevProvider) IssueToken(username string) (string, error) {
	now := p.now()
	claims := devClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    devIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func (p *DevProvider) renderLogin(w http.ResponseWriter, status int, username, errorMessage, next string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	data := map[string]string{
		"Username": username,
		"Error":    errorMessage,
		"Next":     next,
	}
	if err := devLoginTemplate.Execute(w, data); err != nil {
		log.Printf("❌ Failed to render dev login page: %v", err)
	}
}
