package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Aphidet6/earth-bettashop/internal/auth"
	"github.com/Aphidet6/earth-bettashop/internal/domain"
	"github.com/Aphidet6/earth-bettashop/internal/oauth"
	"github.com/Aphidet6/earth-bettashop/internal/repository"
	apperrors "github.com/Aphidet6/earth-bettashop/pkg/errors"
)

// ProviderLinker resolves an external provider profile to a local user,
// creating and linking accounts as needed, and issues an access token for
// the resolved user.
type ProviderLinker struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewProviderLinker creates a new provider linker.
func NewProviderLinker(userRepo repository.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *ProviderLinker {
	return &ProviderLinker{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Resolve maps a provider account to a local user in three ordered steps:
// an existing mapping wins, then a user whose username matches the profile
// email is linked, and finally a fresh user is created together with its
// mapping. Concurrent logins with the same provider account race on unique
// constraints; both steps two and three swallow the losing side's conflict
// and re-resolve, so either request ends up with the same user.
func (l *ProviderLinker) Resolve(ctx context.Context, provider string, profile *oauth.Profile) (*domain.User, string, error) {
	user, err := l.resolveUser(ctx, provider, profile)
	if err != nil {
		return nil, "", err
	}

	token, err := l.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user.Sanitized(), token, nil
}

func (l *ProviderLinker) resolveUser(ctx context.Context, provider string, profile *oauth.Profile) (*domain.User, error) {
	// Step 1: the mapping already exists.
	user, err := l.userRepo.GetByProvider(ctx, provider, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("lookup provider mapping: %w", err)
	}

	// Step 2: an account with the profile's email already exists; attach the
	// mapping to it. The insert is a no-op when a concurrent request linked
	// the same provider account first.
	if profile.Email != "" {
		user, err = l.userRepo.GetByUsername(ctx, profile.Email)
		if err == nil {
			mapping := &domain.ProviderMapping{
				Provider:   provider,
				ProviderID: profile.ID,
				UserID:     user.ID,
			}
			if err := l.userRepo.LinkProvider(ctx, mapping); err != nil {
				return nil, fmt.Errorf("link provider to existing user: %w", err)
			}

			l.logger.InfoContext(ctx, "provider linked to existing user",
				slog.String("provider", provider),
				slog.Int64("user_id", user.ID),
			)
			return user, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("lookup user by email: %w", err)
		}
	}

	// Step 3: create the user and mapping together.
	user = &domain.User{
		Username: usernameForProfile(provider, profile),
		Role:     domain.RoleCustomer,
	}
	mapping := &domain.ProviderMapping{
		Provider:   provider,
		ProviderID: profile.ID,
	}

	err = l.userRepo.CreateWithProvider(ctx, user, mapping)
	if err == nil {
		l.logger.InfoContext(ctx, "user created from provider profile",
			slog.String("provider", provider),
			slog.Int64("user_id", user.ID),
		)
		return user, nil
	}

	// A concurrent request created the user between our lookups. Re-resolve
	// through the mapping, then the username.
	if errors.Is(err, apperrors.ErrAlreadyExists) {
		if user, lookupErr := l.userRepo.GetByProvider(ctx, provider, profile.ID); lookupErr == nil {
			return user, nil
		}
		if user, lookupErr := l.userRepo.GetByUsername(ctx, usernameForProfile(provider, profile)); lookupErr == nil {
			if linkErr := l.userRepo.LinkProvider(ctx, &domain.ProviderMapping{
				Provider:   provider,
				ProviderID: profile.ID,
				UserID:     user.ID,
			}); linkErr != nil {
				return nil, fmt.Errorf("link provider after create race: %w", linkErr)
			}
			return user, nil
		}
	}

	return nil, fmt.Errorf("create user from provider profile: %w", err)
}

// usernameForProfile picks a username for a provider-created account. The
// profile email is preferred; accounts without one get a provider-scoped
// fallback name.
func usernameForProfile(provider string, profile *oauth.Profile) string {
	if profile.Email != "" {
		return profile.Email
	}
	return provider + ":" + profile.ID
}
