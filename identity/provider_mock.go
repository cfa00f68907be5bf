package identity

import (
	"context"
	"net/http"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"biketowork/models"
)

// MockProvider is a mock implementation of the Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProvider) CurrentIdentity(r *http.Request) (mo.Option[string], error) {
	args := m.Called(r)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

func (m *MockProvider) LookupProfile(ctx context.Context, subject string) (models.Profile, error) {
	args := m.Called(ctx, subject)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *MockProvider) Login(w http.ResponseWriter, r *http.Request, next string) {
	m.Called(w, r, next)
}

func (m *MockProvider) Logout(w http.ResponseWriter, r *http.Request) {
	m.Called(w, r)
}
