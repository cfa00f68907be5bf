package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"biketowork/core"
	dbtx "biketowork/db/tx"
	"biketowork/models"
)

type SQLUsersRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for users table
var usersColumns = []string{
	"id",
	"auth_provider",
	"auth_provider_id",
	"username",
	"email",
	"created_at",
	"updated_at",
}

func NewSQLUsersRepository(db *sqlx.DB, schema string) *SQLUsersRepository {
	return &SQLUsersRepository{db: db, schema: schema}
}

func (r *SQLUsersRepository) GetUserByAuthProvider(
	ctx context.Context,
	authProvider, authProviderID string,
) (*models.User, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(usersColumns, ", ")
	query := db.Rebind(fmt.Sprintf(`
		SELECT %s
		FROM %s.users
		WHERE auth_provider = ? AND auth_provider_id = ?`,
		returningStr, r.schema))

	user := &models.User{}
	err := db.QueryRowxContext(ctx, query, authProvider, authProviderID).StructScan(user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by auth provider: %w", err)
	}

	return user, nil
}

func (r *SQLUsersRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	returningStr := strings.Join(usersColumns, ", ")
	query := db.Rebind(fmt.Sprintf(`SELECT %s FROM %s.users WHERE id = ?`, returningStr, r.schema))

	user := &models.User{}
	err := db.QueryRowxContext(ctx, query, id).StructScan(user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// UpsertUser inserts a user for the given identity, or refreshes the profile of the existing one.
func (r *SQLUsersRepository) UpsertUser(
	ctx context.Context,
	authProvider, authProviderID string,
	profile models.Profile,
) (*models.User, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	userID := core.NewID("u")
	now := time.Now().UTC()

	columnsStr := strings.Join(usersColumns, ", ")
	query := db.Rebind(fmt.Sprintf(`
		INSERT INTO %s.users (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (auth_provider, auth_provider_id) DO UPDATE SET
			username = excluded.username,
			email = excluded.email,
			updated_at = excluded.updated_at`, r.schema, columnsStr))

	_, err := db.ExecContext(
		ctx,
		query,
		userID,
		authProvider,
		authProviderID,
		profile.Username,
		profile.Email,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return r.GetUserByAuthProvider(ctx, authProvider, authProviderID)
}
