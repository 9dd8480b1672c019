package ports

import "context"

// ProfilePort names players in the account store backing a deployment.
type ProfilePort interface {
	// SetTableName makes name the one shown for userID in table rosters.
	SetTableName(ctx context.Context, userID, name string) error
}
