package identity

import (
	"context"
	"net/http"

	"github.com/samber/mo"

	"biketowork/models"
)

// Provider authenticates requests against an external identity system.
type Provider interface {
	// Name is stored as users.auth_provider
	Name() string
	// CurrentIdentity returns the provider subject of the request's session, or None when
	// the request is anonymous. Invalid or expired credentials count as anonymous.
	CurrentIdentity(r *http.Request) (mo.Option[string], error)
	// LookupProfile fetches the display profile of a subject.
	LookupProfile(ctx context.Context, subject string) (models.Profile, error)
	// Login starts a sign-in that returns the browser to next once it succeeds.
	Login(w http.ResponseWriter, r *http.Request, next string)
	// Logout ends the session held by the browser.
	Logout(w http.ResponseWriter, r *http.Request)
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
