package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"dutch/internal/app"
	"dutch/internal/domain"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// FindMatchRequest selects a table. An invite wins over a code; with neither, any open
// public table is joined or a new one created. Private creates a fresh private table.
type FindMatchRequest struct {
	Code    string `json:"code,omitempty"`
	Invite  string `json:"invite,omitempty"`
	Private bool   `json:"private,omitempty"`
}

// FindMatchResponse is the payload returned to clients when requesting a table.
type FindMatchResponse struct {
	MatchID string `json:"match_id"`
	Code    string `json:"code"`
	IsNew   bool   `json:"is_new"`
}

type inviteRequest struct {
	Code string `json:"code"`
}

type inviteResponse struct {
	Token string `json:"token"`
}

// inviteService overrides the env-configured invite signer in tests.
var inviteService *app.InviteService

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcFindMatch, rpcFindMatch); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcInvite, rpcInvite)
}

func invites(ctx context.Context, logger runtime.Logger) *app.InviteService {
	if inviteService != nil {
		return inviteService
	}
	cfg := loadConfig(ctx, logger)
	return app.NewInviteService(cfg.InviteSecret, time.Duration(cfg.InviteTTLSeconds)*time.Second)
}

func rpcFindMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req FindMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
		}
	}

	if req.Invite != "" {
		code, err := invites(ctx, logger).Redeem(req.Invite)
		if err != nil {
			logger.Info("RpcFindMatch [User:%s]: Rejected invite: %v", userID, err)
			return "", runtime.NewError("Invalid invite", 3)
		}
		req.Code = code
	}

	var resp FindMatchResponse
	var err error
	switch {
	case req.Code != "":
		resp, err = matchByCode(ctx, nk, req.Code)
	case req.Private:
		resp, err = createMatch(ctx, nk, true)
	default:
		resp, err = openMatch(ctx, nk)
	}
	if err != nil {
		var rerr *runtime.Error
		if !errors.As(err, &rerr) {
			logger.Error("RpcFindMatch [User:%s]: %v", userID, err)
		}
		return "", err
	}

	logger.Info("RpcFindMatch [User:%s]: Table %s (match %s, new=%v)", userID, resp.Code, resp.MatchID, resp.IsNew)
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func matchByCode(ctx context.Context, nk runtime.NakamaModule, code string) (FindMatchResponse, error) {
	matches, err := listMatches(ctx, nk, 1, fmt.Sprintf("+label.game:%s +label.code:%s", labelGame, code))
	if err != nil {
		return FindMatchResponse{}, err
	}
	if len(matches) == 0 {
		return FindMatchResponse{}, runtime.NewError("Table not found", 5) // NOT_FOUND
	}
	if open, _ := labelValue(matches[0], "open").(bool); !open {
		return FindMatchResponse{}, runtime.NewError("Table full", 9) // FAILED_PRECONDITION
	}
	return FindMatchResponse{MatchID: matches[0].MatchId, Code: code}, nil
}

func openMatch(ctx context.Context, nk runtime.NakamaModule) (FindMatchResponse, error) {
	query := fmt.Sprintf("+label.game:%s +label.open:T +label.private:F", labelGame)
	matches, err := listMatches(ctx, nk, 10, query)
	if err != nil {
		return FindMatchResponse{}, err
	}
	if len(matches) > 0 {
		code, _ := labelValue(matches[0], "code").(string)
		return FindMatchResponse{MatchID: matches[0].MatchId, Code: code}, nil
	}
	return createMatch(ctx, nk, false)
}

// createMatch reserves a join code no live match carries and starts a match with it.
func createMatch(ctx context.Context, nk runtime.NakamaModule, private bool) (FindMatchResponse, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	code := ""
	for i := 0; i < maxCodeAttempts && code == ""; i++ {
		candidate := app.NewCode(rng)
		taken, err := listMatches(ctx, nk, 1, fmt.Sprintf("+label.code:%s", candidate))
		if err != nil {
			return FindMatchResponse{}, err
		}
		if len(taken) == 0 {
			code = candidate
		}
	}
	if code == "" {
		return FindMatchResponse{}, runtime.NewError("No free table code", 13) // INTERNAL
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameDutch, map[string]interface{}{
		"code":    code,
		"private": private,
	})
	if err != nil {
		return FindMatchResponse{}, fmt.Errorf("failed to create match: %w", err)
	}
	return FindMatchResponse{MatchID: matchID, Code: code, IsNew: true}, nil
}

func listMatches(ctx context.Context, nk runtime.NakamaModule, limit int, query string) ([]*api.Match, error) {
	minSize := 0
	maxSize := domain.MaxSeats
	matches, err := nk.MatchList(ctx, limit, true, "", &minSize, &maxSize, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// labelValue reads one field of a match label written by matchLabel.
func labelValue(m *api.Match, key string) interface{} {
	if m.GetLabel() == nil {
		return nil
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal([]byte(m.GetLabel().GetValue()), s); err != nil {
		return nil
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return nil
	}
	return v.AsInterface()
}

func rpcInvite(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req inviteRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.Code == "" {
		return "", runtime.NewError("Table code required", 3)
	}

	token, err := invites(ctx, logger).Issue(req.Code, userID)
	if errors.Is(err, app.ErrInvitesDisabled) {
		return "", runtime.NewError("Invites are disabled", 12) // UNIMPLEMENTED
	}
	if err != nil {
		logger.Warn("RpcInvite [User:%s]: %v", userID, err)
		return "", runtime.NewError("Invalid table code", 3)
	}

	b, err := json.Marshal(inviteResponse{Token: token})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
