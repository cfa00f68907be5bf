package rides

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"biketowork/models"
)

// MockRidesService is a mock implementation of the RidesService interface
type MockRidesService struct {
	mock.Mock
}

func (m *MockRidesService) CreateRide(ctx context.Context, userID string, input models.RideInput) (*models.Ride, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ride), args.Error(1)
}

func (m *MockRidesService) ListRecentRides(ctx context.Context) ([]*models.Ride, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ride), args.Error(1)
}

func (m *MockRidesService) ListRides(ctx context.Context, page int) (*models.RidesPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RidesPage), args.Error(1)
}

func (m *MockRidesService) GetRideByID(ctx context.Context, id string) (mo.Option[*models.Ride], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(mo.Option[*models.Ride]), args.Error(1)
}

func (m *MockRidesService) DeleteRide(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
