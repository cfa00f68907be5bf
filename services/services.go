package services

import (
	"context"

	"github.com/samber/mo"

	"biketowork/models"
)

// UsersService defines the interface for user-related operations
type UsersService interface {
	GetOrCreateUser(ctx context.Context, authProvider, authProviderID string) (*models.User, error)
}

// RidesService defines the interface for ride-related operations
type RidesService interface {
	CreateRide(ctx context.Context, userID string, input models.RideInput) (*models.Ride, error)
	ListRecentRides(ctx context.Context) ([]*models.Ride, error)
	ListRides(ctx context.Context, page int) (*models.RidesPage, error)
	GetRideByID(ctx context.Context, id string) (mo.Option[*models.Ride], error)
	DeleteRide(ctx context.Context, id string) error
}

// ProfileLookup fetches the profile of an identity provider subject
type ProfileLookup interface {
	LookupProfile(ctx context.Context, subject string) (models.Profile, error)
}

// TransactionManager runs a function inside a database transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
