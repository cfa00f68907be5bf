package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"biketowork/appctx"
	"biketowork/identity"
	"biketowork/middleware"
	"biketowork/utils"
)

type AccountsHTTPHandler struct {
	provider identity.Provider
	layout   Layout
}

func NewAccountsHTTPHandler(provider identity.Provider, layout Layout) *AccountsHTTPHandler {
	return &AccountsHTTPHandler{
		provider: provider,
		layout:   layout,
	}
}

type loginCompletePage struct {
	pageData
	Next     string
	LoginURL string
}

// nextPath returns the requested post-login destination, or "/" when it is missing or off-site
func nextPath(r *http.Request) string {
	next := r.FormValue("next")
	if !utils.IsLocalRedirect(next) {
		return "/"
	}
	return next
}

func (h *AccountsHTTPHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	next := nextPath(r)

	if _, ok := appctx.GetUser(r.Context()); ok && r.Method == http.MethodGet {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}

	log.Printf("🔐 %s login via %s", r.Method, h.provider.Name())
	h.provider.Login(w, r, next)
}

func (h *AccountsHTTPHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := appctx.GetUser(r.Context()); ok {
		log.Printf("👋 Logging out user %s", user.ID)
	}

	h.provider.Logout(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLoginComplete is where the identity provider returns the browser after signing in
func (h *AccountsHTTPHandler) HandleLoginComplete(w http.ResponseWriter, r *http.Request) {
	next := nextPath(r)

	user, ok := appctx.GetUser(r.Context())
	if !ok && h.layout.ClerkEnabled() {
		// The hosted sign-in page does not set our session cookie; clerk-js on this page does,
		// then reloads it so the next request carries the session.
		log.Printf("⏳ Login callback reached before the session cookie was set")
		render(w, http.StatusOK, "login_complete", loginCompletePage{
			pageData: newPageData(r, h.layout, "Signing in", ""),
			Next:     next,
			LoginURL: middleware.LoginURL(next),
		})
		return
	}
	if !ok {
		log.Printf("❌ Login callback reached without a session")
		http.Redirect(w, r, middleware.LoginURL(next), http.StatusFound)
		return
	}

	log.Printf("✅ User %s signed in", user.ID)
	http.Redirect(w, r, next, http.StatusFound)
}

func (h *AccountsHTTPHandler) SetupEndpoints(router *mux.Router) {
	log.Printf("🚀 Registering account endpoints")

	router.HandleFunc(middleware.LoginPath, h.HandleLogin).Methods("GET", "POST")
	log.Printf("✅ GET, POST %s endpoints registered", middleware.LoginPath)

	router.HandleFunc("/accounts/logout/", h.HandleLogout).Methods("GET", "POST")
	log.Printf("✅ GET, POST /accounts/logout/ endpoints registered")

	router.HandleFunc("/accounts/complete/", h.HandleLoginComplete).Methods("GET")
	log.Printf("✅ GET /accounts/complete/ endpoint registered")

	log.Printf("✅ All account endpoints registered successfully")
}
