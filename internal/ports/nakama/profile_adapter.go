package nakama

import (
	"context"
	"fmt"

	"dutch/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// ProfileAdapter implements ports.ProfilePort on Nakama accounts. Rosters show the presence
// username, so both the username and the display name are set.
type ProfileAdapter struct {
	nk runtime.NakamaModule
}

func NewProfileAdapter(nk runtime.NakamaModule) *ProfileAdapter {
	return &ProfileAdapter{nk: nk}
}

func (a *ProfileAdapter) SetTableName(ctx context.Context, userID, name string) error {
	if err := a.nk.AccountUpdateId(ctx, userID, name, nil, name, "", "", "", ""); err != nil {
		return fmt.Errorf("rename %s: %w", userID, err)
	}
	return nil
}

var _ ports.ProfilePort = (*ProfileAdapter)(nil)
