package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"dutch/internal/app"
	"dutch/internal/ports"
)

// Service names new accounts after the table pseudonyms.
type Service struct {
	profiles ports.ProfilePort
	rng      *rand.Rand
}

// NewService constructs an onboarding service; rng may be nil to use a time-seeded default.
func NewService(profiles ports.ProfilePort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{profiles: profiles, rng: rng}
}

// OnboardNewUser gives a newly created account the table name it shows in rosters.
// Returns the applied name.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (string, error) {
	if s.profiles == nil {
		return "", fmt.Errorf("onboarding service not configured")
	}

	name := s.tableName()
	if err := s.profiles.SetTableName(ctx, userID, name); err != nil {
		return "", fmt.Errorf("failed to name %s: %w", userID, err)
	}
	return name, nil
}

// tableName is a pseudonym with a numeric suffix, since account names must be unique.
func (s *Service) tableName() string {
	return fmt.Sprintf("%s%d", app.Pseudonym(s.rng.Intn(app.MaxClients)), s.rng.Intn(9000)+1000)
}
