package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"biketowork/identity"
	"biketowork/middleware"
	"biketowork/models"
	"biketowork/services/rides"
	"biketowork/services/users"
)

var (
	alice = &models.User{
		ID:             "u_01HZZZZZZZZZZZZZZZZZZZZZZZ",
		AuthProvider:   "dev",
		AuthProviderID: "alice",
		Username:       "alice",
	}
	admin = &models.User{
		ID:             "u_01HYYYYYYYYYYYYYYYYYYYYYYY",
		AuthProvider:   "dev",
		AuthProviderID: "admin",
		Username:       "admin",
	}
)

// testServer wires the handlers into a router the same way the server does
type testServer struct {
	router       *mux.Router
	provider     *identity.MockProvider
	ridesService *rides.MockRidesService
}

func newTestServer(t *testing.T, user *models.User) *testServer {
	t.Helper()
	return newTestServerWithLayout(t, user, Layout{})
}

func newTestServerWithLayout(t *testing.T, user *models.User, layout Layout) *testServer {
	t.Helper()

	provider := &identity.MockProvider{}
	usersService := &users.MockUsersService{}
	ridesService := &rides.MockRidesService{}

	provider.On("Name").Return("dev").Maybe()
	if user == nil {
		provider.On("CurrentIdentity", mock.Anything).Return(mo.None[string](), nil).Maybe()
	} else {
		provider.On("CurrentIdentity", mock.Anything).Return(mo.Some(user.AuthProviderID), nil).Maybe()
		usersService.On("GetOrCreateUser", mock.Anything, "dev", user.AuthProviderID).Return(user, nil).Maybe()
	}

	authMiddleware := middleware.NewAuthMiddleware(provider, usersService, func(user *models.User) bool {
		return user.AuthProvider == "dev" && user.AuthProviderID == "admin"
	})

	router := mux.NewRouter()
	router.Use(authMiddleware.WithSession)
	NewRidesHTTPHandler(ridesService, time.UTC, layout).SetupEndpoints(router, authMiddleware)
	NewAccountsHTTPHandler(provider, layout).SetupEndpoints(router)
	NewAdminHTTPHandler(ridesService, time.UTC, layout).SetupEndpoints(router, authMiddleware)

	t.Cleanup(func() {
		provider.AssertExpectations(t)
		ridesService.AssertExpectations(t)
	})

	return &testServer{
		router:       router,
		provider:     provider,
		ridesService: ridesService,
	}
}

func (s *testServer) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func postForm(path string, values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func testRide(username string, start time.Time, minutes int, distance string) *models.Ride {
	return &models.Ride{
		ID:        "r_01HZZZZZZZZZZZZZZZZZZZZZZZ",
		Distance:  decimal.RequireFromString(distance),
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		Username:  username,
	}
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
