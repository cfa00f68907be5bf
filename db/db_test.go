package db

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"biketowork/core"
	"biketowork/models"
)

const testSchema = "main"

func newTestConnection(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := NewConnection("sqlite3", ":memory:?_foreign_keys=1")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, Migrate(context.Background(), conn, testSchema))
	return conn
}

func createUser(t *testing.T, repo *SQLUsersRepository, username string) *models.User {
	t.Helper()

	user, err := repo.UpsertUser(context.Background(), "test", "subject-"+username, models.Profile{
		Username: username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return user
}

func newRide(user *models.User, start time.Time, minutes int, distance string) *models.Ride {
	return &models.Ride{
		ID:        core.NewID("r"),
		UserID:    user.ID,
		Distance:  decimal.RequireFromString(distance),
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
	}
}
