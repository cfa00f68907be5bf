package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"biketowork/core"
	dbtx "biketowork/db/tx"
	"biketowork/models"
)

type SQLRidesRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for rides table
var ridesColumns = []string{
	"id",
	"user_id",
	"distance",
	"start_time",
	"end_time",
}

func NewSQLRidesRepository(db *sqlx.DB, schema string) *SQLRidesRepository {
	return &SQLRidesRepository{db: db, schema: schema}
}

// ridesSelect selects rides joined with the owner's username.
func (r *SQLRidesRepository) ridesSelect() string {
	qualified := make([]string, 0, len(ridesColumns)+1)
	for _, column := range ridesColumns {
		qualified = append(qualified, "r."+column)
	}
	qualified = append(qualified, "u.username")

	return fmt.Sprintf(`
		SELECT %s
		FROM %s.rides r
		JOIN %s.users u ON u.id = r.user_id`,
		strings.Join(qualified, ", "), r.schema, r.schema)
}

func (r *SQLRidesRepository) CreateRide(ctx context.Context, ride *models.Ride) error {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(ridesColumns, ", ")
	query := db.Rebind(fmt.Sprintf(`
		INSERT INTO %s.rides (%s)
		VALUES (?, ?, ?, ?, ?)`, r.schema, columnsStr))

	_, err := db.ExecContext(
		ctx,
		query,
		ride.ID,
		ride.UserID,
		ride.Distance,
		ride.StartTime.UTC(),
		ride.EndTime.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	return nil
}

// ListRecentRides returns up to limit rides, latest start time first.
// Rides starting at the same instant keep the order they were created in.
func (r *SQLRidesRepository) ListRecentRides(ctx context.Context, limit int) ([]*models.Ride, error) {
	return r.ListRides(ctx, limit, 0)
}

func (r *SQLRidesRepository) ListRides(ctx context.Context, limit, offset int) ([]*models.Ride, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := db.Rebind(r.ridesSelect() + `
		ORDER BY r.start_time DESC, r.id ASC
		LIMIT ? OFFSET ?`)

	rides := []*models.Ride{}
	if err := db.SelectContext(ctx, &rides, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}

	return rides, nil
}

func (r *SQLRidesRepository) CountRides(ctx context.Context) (int, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s.rides`, r.schema)
	if err := db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count rides: %w", err)
	}

	return count, nil
}

func (r *SQLRidesRepository) GetRideByID(ctx context.Context, id string) (*models.Ride, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := db.Rebind(r.ridesSelect() + ` WHERE r.id = ?`)

	ride := &models.Ride{}
	err := db.QueryRowxContext(ctx, query, id).StructScan(ride)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride by id: %w", err)
	}

	return ride, nil
}

func (r *SQLRidesRepository) DeleteRide(ctx context.Context, id string) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := db.Rebind(fmt.Sprintf(`DELETE FROM %s.rides WHERE id = ?`, r.schema))
	result, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete ride: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return core.ErrNotFound
	}

	return nil
}
