package rides

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"biketowork/core"
	"biketowork/db"
	"biketowork/metrics"
	"biketowork/models"
	"biketowork/ridenotif"
	"biketowork/services"
)

const (
	RecentRidesLimit = 5
	AdminPageSize    = 50
)

type RidesService struct {
	ridesRepo *db.SQLRidesRepository
	usersRepo *db.SQLUsersRepository
	txManager services.TransactionManager
}

func NewRidesService(
	ridesRepo *db.SQLRidesRepository,
	usersRepo *db.SQLUsersRepository,
	txManager services.TransactionManager,
) *RidesService {
	return &RidesService{
		ridesRepo: ridesRepo,
		usersRepo: usersRepo,
		txManager: txManager,
	}
}

// CreateRide stores a ride owned by userID. Input breaking a ride rule yields a *core.ValidationError.
func (s *RidesService) CreateRide(ctx context.Context, userID string, input models.RideInput) (*models.Ride, error) {
	log.Printf("📋 Starting to create ride for user: %s", userID)

	if !core.HasPrefix(userID, "u") {
		return nil, fmt.Errorf("user_id must be a valid user ID")
	}

	if errs := ValidateRideInput(input); len(errs) > 0 {
		metrics.RecordRideRejected()
		return nil, core.NewValidationError(errs)
	}

	ride := &models.Ride{
		ID:        core.NewID("r"),
		UserID:    userID,
		Distance:  input.Distance,
		StartTime: input.StartTime.UTC(),
		EndTime:   input.EndTime.UTC(),
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		owner, err := s.usersRepo.GetUserByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get ride owner: %w", err)
		}
		ride.Username = owner.Username

		return s.ridesRepo.CreateRide(ctx, ride)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ride: %w", err)
	}

	metrics.RecordRideCreated()
	ridenotif.New(ride)

	log.Printf("📋 Completed successfully - created ride %s (%s)", ride.ID, ride.Description())
	return ride, nil
}

// ListRecentRides returns the most recently started rides, newest first.
func (s *RidesService) ListRecentRides(ctx context.Context) ([]*models.Ride, error) {
	rides, err := s.ridesRepo.ListRecentRides(ctx, RecentRidesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent rides: %w", err)
	}

	return rides, nil
}

// ListRides returns one page of every ride for the admin list. Pages start at 1;
// pages past the end are clamped to the last page.
func (s *RidesService) ListRides(ctx context.Context, page int) (*models.RidesPage, error) {
	log.Printf("📋 Starting to list rides page %d", page)

	total, err := s.ridesRepo.CountRides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rides: %w", err)
	}

	lastPage := max(1, (total+AdminPageSize-1)/AdminPageSize)
	page = min(max(page, 1), lastPage)

	rides, err := s.ridesRepo.ListRides(ctx, AdminPageSize, (page-1)*AdminPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}

	log.Printf("📋 Completed successfully - listed %d of %d rides", len(rides), total)
	return &models.RidesPage{
		Rides:      rides,
		Page:       page,
		PageSize:   AdminPageSize,
		TotalCount: total,
	}, nil
}

func (s *RidesService) GetRideByID(ctx context.Context, id string) (mo.Option[*models.Ride], error) {
	if !core.IsValidULID(id) {
		return mo.None[*models.Ride](), nil
	}

	ride, err := s.ridesRepo.GetRideByID(ctx, id)
	if err != nil {
		if core.IsNotFoundError(err) {
			return mo.None[*models.Ride](), nil
		}
		return mo.None[*models.Ride](), fmt.Errorf("failed to get ride: %w", err)
	}

	return mo.Some(ride), nil
}

func (s *RidesService) DeleteRide(ctx context.Context, id string) error {
	log.Printf("📋 Starting to delete ride: %s", id)

	if !core.IsValidULID(id) {
		return core.ErrNotFound
	}

	if err := s.ridesRepo.DeleteRide(ctx, id); err != nil {
		return fmt.Errorf("failed to delete ride %s: %w", id, err)
	}

	log.Printf("📋 Completed successfully - deleted ride: %s", id)
	return nil
}
