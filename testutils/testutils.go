package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"biketowork/core"
	"biketowork/db"
	"biketowork/models"
)

// TestSchema is the schema name of the in-memory sqlite databases used in tests
const TestSchema = "main"

// NewTestDB opens a migrated in-memory sqlite database that is closed when the test ends
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.NewConnection("sqlite3", ":memory:?_foreign_keys=1")
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { conn.Close() })

	err = db.Migrate(context.Background(), conn, TestSchema)
	require.NoError(t, err, "Failed to migrate test database")

	return conn
}

// CreateTestUser creates a user signed in through the "test" provider
func CreateTestUser(t *testing.T, usersRepo *db.SQLUsersRepository, username string) *models.User {
	t.Helper()

	user, err := usersRepo.UpsertUser(context.Background(), "test", "test-"+username, models.Profile{
		Username: username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err, "Failed to create test user %s", username)
	return user
}

// CreateTestRide stores a ride for user starting at start and lasting the given minutes
func CreateTestRide(
	t *testing.T,
	ridesRepo *db.SQLRidesRepository,
	user *models.User,
	start time.Time,
	minutes int,
	distance string,
) *models.Ride {
	t.Helper()

	ride := &models.Ride{
		ID:        core.NewID("r"),
		UserID:    user.ID,
		Distance:  decimal.RequireFromString(distance),
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		Username:  user.Username,
	}
	err := ridesRepo.CreateRide(context.Background(), ride)
	require.NoError(t, err, "Failed to create test ride")
	return ride
}
