package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/bnema/internode-usage-cli/internal/ports"
)

var ErrInvalidProfile = errors.New("invalid credential profile")

// CredentialService manages stored credential profiles. Passwords go to the
// secret store, everything else to the profile repository.
type CredentialService struct {
	profiles ports.ProfileRepository
	store    ports.SecretStore
	clock    ports.Clock
}

func NewCredentialService(profiles ports.ProfileRepository, store ports.SecretStore, clock ports.Clock) *CredentialService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &CredentialService{
		profiles: profiles,
		store:    store,
		clock:    clock,
	}
}

func (s *CredentialService) SetCredentials(ctx context.Context, name domain.ProfileName, username, password, serviceType string) error {
	name = domain.ProfileName(strings.TrimSpace(string(name)))
	if err := domain.ValidateProfileName(name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidProfile)
	}

	profile, err := s.profiles.GetByName(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrProfileNotFound) {
			return fmt.Errorf("get profile by name: %w", err)
		}
		profile = domain.Profile{Name: name}
	}
	originalProfile := profile
	previousSecretRef := profile.SecretRef
	secretKey := domain.SecretRef(name)

	// The key is derived from the profile name, so an update overwrites the
	// stored password. Keep it to restore on failure.
	var previousPassword *string
	if previousSecretRef == secretKey {
		current, err := s.store.Get(ctx, secretKey)
		switch {
		case err == nil:
			previousPassword = &current
		case !errors.Is(err, domain.ErrSecretNotFound):
			return fmt.Errorf("read current secret: %w", err)
		}
	}

	if err := s.store.Put(ctx, secretKey, password); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	profile.Username = strings.TrimSpace(username)
	profile.SecretRef = secretKey
	if serviceType != "" {
		profile.ServiceType = serviceType
	}
	profile.UpdatedAt = s.clock.Now().UTC()

	if err := s.profiles.Save(ctx, profile); err != nil {
		if rollbackErr := s.rollbackSecret(ctx, secretKey, previousPassword); rollbackErr != nil {
			return fmt.Errorf("save profile and rollback stored password: %w", errors.Join(err, rollbackErr))
		}

		return fmt.Errorf("save profile: %w", err)
	}

	if previousSecretRef == "" || previousSecretRef == secretKey {
		return nil
	}

	if err := s.store.Delete(ctx, previousSecretRef); err != nil {
		var rollbackErr error
		if restoreErr := s.profiles.Save(ctx, originalProfile); restoreErr != nil {
			rollbackErr = errors.Join(rollbackErr, restoreErr)
		}
		if deleteErr := s.store.Delete(ctx, secretKey); deleteErr != nil {
			rollbackErr = errors.Join(rollbackErr, deleteErr)
		}
		if rollbackErr != nil {
			return fmt.Errorf("delete previous password and rollback profile update: %w", errors.Join(err, rollbackErr))
		}
		return fmt.Errorf("delete previous password: %w", err)
	}

	return nil
}

func (s *CredentialService) rollbackSecret(ctx context.Context, secretKey string, previous *string) error {
	if previous != nil {
		return s.store.Put(ctx, secretKey, *previous)
	}
	return s.store.Delete(ctx, secretKey)
}

func (s *CredentialService) RemoveCredentials(ctx context.Context, name domain.ProfileName) error {
	profile, err := s.profiles.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("get profile by name: %w", err)
	}

	if err := s.profiles.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	if profile.SecretRef == "" {
		return nil
	}

	if err := s.store.Delete(ctx, profile.SecretRef); err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return nil
		}
		if restoreErr := s.profiles.Save(ctx, profile); restoreErr != nil {
			return fmt.Errorf("delete password and restore profile: %w", errors.Join(err, restoreErr))
		}
		return fmt.Errorf("delete password: %w", err)
	}

	return nil
}

// Resolve loads a profile and its password.
func (s *CredentialService) Resolve(ctx context.Context, name domain.ProfileName) (domain.Credentials, domain.Profile, error) {
	profile, err := s.profiles.GetByName(ctx, name)
	if err != nil {
		return domain.Credentials{}, domain.Profile{}, fmt.Errorf("get profile by name: %w", err)
	}
	if profile.SecretRef == "" {
		return domain.Credentials{}, domain.Profile{}, fmt.Errorf("profile %s: %w", name, domain.ErrSecretNotFound)
	}

	password, err := s.store.Get(ctx, profile.SecretRef)
	if err != nil {
		return domain.Credentials{}, domain.Profile{}, fmt.Errorf("read password of profile %s: %w", name, err)
	}

	return domain.Credentials{Username: profile.Username, Password: password}, profile, nil
}

// ResolveOrDefault returns explicit when it is complete, otherwise the
// credentials stored in the named profile.
func (s *CredentialService) ResolveOrDefault(ctx context.Context, explicit domain.Credentials, name domain.ProfileName) (domain.Credentials, domain.Profile, error) {
	if !explicit.Empty() {
		return explicit, domain.Profile{}, nil
	}

	creds, profile, err := s.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.Credentials{}, domain.Profile{}, fmt.Errorf("%w: set IU_USERNAME and IU_PASSWORD or run `iu auth set --profile %s`", domain.ErrAuthentication, name)
		}
		return domain.Credentials{}, domain.Profile{}, err
	}

	return creds, profile, nil
}

func (s *CredentialService) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	return profiles, nil
}
