package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

const inviteIssuer = "dutch"

var (
	ErrInvitesDisabled = errors.New("invites are not configured")
	ErrInvalidInvite   = errors.New("invalid invite")
)

// InviteService signs and redeems invites to private tables. An invite is an HS256 token
// whose subject is the table join code.
type InviteService struct {
	secret string
	ttl    time.Duration
}

func NewInviteService(secret string, ttl time.Duration) *InviteService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &InviteService{secret: secret, ttl: ttl}
}

// Issue signs an invite to the table with the given code on behalf of inviter.
func (s *InviteService) Issue(code, inviter string) (string, error) {
	if s == nil || s.secret == "" {
		return "", ErrInvitesDisabled
	}
	if len(code) != codeLength {
		return "", fmt.Errorf("invite code %q must have %d characters", code, codeLength)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  inviteIssuer,
		"sub":  code,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
		"from": inviter,
		"jti":  fmt.Sprintf("%d-%d", now.UnixNano(), rand.Int63()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Redeem verifies an invite and returns the join code it carries.
func (s *InviteService) Redeem(tokenString string) (string, error) {
	if s == nil || s.secret == "" {
		return "", ErrInvitesDisabled
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInvite, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidInvite
	}
	if iss, _ := claims["iss"].(string); iss != inviteIssuer {
		return "", fmt.Errorf("%w: issuer %q", ErrInvalidInvite, iss)
	}
	code, _ := claims["sub"].(string)
	if len(code) != codeLength {
		return "", fmt.Errorf("%w: code %q", ErrInvalidInvite, code)
	}
	return code, nil
}
