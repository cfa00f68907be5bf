package users

import (
	"context"
	"fmt"
	"log"

	"biketowork/core"
	"biketowork/db"
	"biketowork/models"
	"biketowork/services"
)

type UsersService struct {
	usersRepo *db.SQLUsersRepository
	profiles  services.ProfileLookup
}

func NewUsersService(repo *db.SQLUsersRepository, profiles services.ProfileLookup) *UsersService {
	return &UsersService{usersRepo: repo, profiles: profiles}
}

// GetOrCreateUser maps an identity provider subject to a local user.
// The provider profile is only fetched the first time a subject is seen.
func (s *UsersService) GetOrCreateUser(ctx context.Context, authProvider, authProviderID string) (*models.User, error) {
	if authProvider == "" {
		return nil, fmt.Errorf("auth_provider cannot be empty")
	}

	if authProviderID == "" {
		return nil, fmt.Errorf("auth_provider_id cannot be empty")
	}

	user, err := s.usersRepo.GetUserByAuthProvider(ctx, authProvider, authProviderID)
	if err == nil {
		return user, nil
	}
	if !core.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	log.Printf("📋 Starting to create user for authProvider: %s, authProviderID: %s", authProvider, authProviderID)

	profile, err := s.profiles.LookupProfile(ctx, authProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	if profile.Username == "" {
		profile.Username = authProviderID
	}

	user, err = s.usersRepo.UpsertUser(ctx, authProvider, authProviderID, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("📋 Completed successfully - created user %s (%s)", user.ID, user.Username)
	return user, nil
}
