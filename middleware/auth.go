package middleware

import (
	"log"
	"net/http"
	"net/url"

	"biketowork/appctx"
	"biketowork/identity"
	"biketowork/models"
	"biketowork/services"
)

const LoginPath = "/accounts/login/"

// LoginURL is the login page that returns the browser to next afterwards.
func LoginURL(next string) string {
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// AuthMiddleware resolves the session identity of each request to a local user
type AuthMiddleware struct {
	provider     identity.Provider
	usersService services.UsersService
	isAdmin      func(user *models.User) bool
}

func NewAuthMiddleware(
	provider identity.Provider,
	usersService services.UsersService,
	isAdmin func(user *models.User) bool,
) *AuthMiddleware {
	return &AuthMiddleware{
		provider:     provider,
		usersService: usersService,
		isAdmin:      isAdmin,
	}
}

// WithSession stores the signed-in user, if any, in the request context.
// Anonymous requests pass through untouched.
func (m *AuthMiddleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		maybeSubject, err := m.provider.CurrentIdentity(r)
		if err != nil {
			log.Printf("❌ Failed to resolve session identity: %v", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		subject, ok := maybeSubject.Get()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.usersService.GetOrCreateUser(r.Context(), m.provider.Name(), subject)
		if err != nil {
			log.Printf("❌ Failed to get or create user: %v", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(appctx.SetUser(r.Context(), user)))
	})
}

// WithAuth redirects anonymous requests to the login page
func (m *AuthMiddleware) WithAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := appctx.GetUser(r.Context()); !ok {
			log.Printf("🔐 Anonymous %s %s redirected to login", r.Method, r.URL.Path)
			http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
			return
		}

		next(w, r)
	}
}

// WithAdmin allows only signed-in administrators, decided by their provider subject
func (m *AuthMiddleware) WithAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.WithAuth(func(w http.ResponseWriter, r *http.Request) {
		user, _ := appctx.GetUser(r.Context())
		if !m.isAdmin(user) {
			log.Printf("❌ User %s is not an administrator", user.ID)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		next(w, r)
	})
}
