package users

import (
	"context"

	"github.com/stretchr/testify/mock"

	"biketowork/models"
)

// MockUsersService is a mock implementation of the UsersService interface
type MockUsersService struct {
	mock.Mock
}

func (m *MockUsersService) GetOrCreateUser(
	ctx context.Context,
	authProvider, authProviderID string,
) (*models.User, error) {
	args := m.Called(ctx, authProvider, authProviderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockProfileLookup is a mock implementation of the ProfileLookup interface
type MockProfileLookup struct {
	mock.Mock
}

func (m *MockProfileLookup) LookupProfile(ctx context.Context, subject string) (models.Profile, error) {
	args := m.Called(ctx, subject)
	return args.Get(0).(models.Profile), args.Error(1)
}
