package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"biketowork/appctx"
	"biketowork/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{
	"recent_rides":   parsePage("recent_rides.html"),
	"new_ride":       parsePage("new_ride.html"),
	"admin_rides":    parsePage("admin_rides.html"),
	"login_complete": parsePage("login_complete.html"),
	"error":          parsePage("error.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/"+name))
}

// Layout holds the site-wide settings of the base layout.
// With Clerk configured every page loads clerk-js, which keeps the __session cookie fresh.
type Layout struct {
	ClerkPublishableKey string
	ClerkScriptURL      string
}

func (l Layout) ClerkEnabled() bool {
	return l.ClerkPublishableKey != "" && l.ClerkScriptURL != ""
}

// pageData is shared by every page rendered inside the base layout
type pageData struct {
	Layout Layout
	Title  string
	User   *models.User
	Notice string
}

func newPageData(r *http.Request, layout Layout, title, notice string) pageData {
	user, _ := appctx.GetUser(r.Context())
	return pageData{
		Layout: layout,
		Title:  title,
		User:   user,
		Notice: notice,
	}
}

type errorPage struct {
	pageData
	Message string
}

// render executes the page into a buffer first so a template failure still yields a clean 500
func render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := pages[page]
	if !ok {
		log.Printf("❌ Unknown page template: %s", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		log.Printf("❌ Failed to render %s page: %v", page, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("❌ Failed to write %s page: %v", page, err)
	}
}

func renderError(w http.ResponseWriter, r *http.Request, layout Layout, status int, message string) {
	render(w, status, "error", errorPage{
		pageData: newPageData(r, layout, http.StatusText(status), ""),
		Message:  message,
	})
}
