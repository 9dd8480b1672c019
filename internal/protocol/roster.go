package protocol

import (
	"bytes"
	"math"

	"dutch/internal/domain"
)

// RosterMember is a human in the waiting room.
type RosterMember struct {
	ID    int
	Ready bool
	Name  string
}

// RosterAI is an AI seat in the waiting room.
type RosterAI struct {
	Difficulty domain.Difficulty
	Name       string
}

// Roster is the waiting room as shown to every member.
type Roster struct {
	Members []RosterMember
	AIs     []RosterAI
	Code    string
	// Speed is the host's animation speed multiplier.
	Speed   float64
	Private bool
}

// EncodeRoster writes:
// 66 (ready id name Sep)* End (1 difficulty name Sep)* End code End speed*10 privacy.
func EncodeRoster(r Roster) []byte {
	b := []byte{OpRoster}
	for _, m := range r.Members {
		b = append(b, boolByte(m.Ready), byte(m.ID))
		b = append(b, m.Name...)
		b = append(b, Sep)
	}
	b = append(b, End)
	for _, ai := range r.AIs {
		b = append(b, 1, byte(ai.Difficulty))
		b = append(b, ai.Name...)
		b = append(b, Sep)
	}
	b = append(b, End)
	b = append(b, r.Code...)
	b = append(b, End)
	return append(b, byte(math.Round(r.Speed*10)), boolByte(r.Private))
}

// DecodeRoster parses a roster message.
func DecodeRoster(p []byte) (Roster, error) {
	var r Roster
	if len(p) == 0 || p[0] != OpRoster {
		return r, ErrMalformed
	}
	rest := p[1:]

	for len(rest) > 0 && rest[0] != End {
		if len(rest) < 3 {
			return r, ErrMalformed
		}
		i := bytes.IndexByte(rest[2:], Sep)
		if i < 0 {
			return r, ErrMalformed
		}
		r.Members = append(r.Members, RosterMember{Ready: rest[0] == 1, ID: int(rest[1]), Name: string(rest[2 : 2+i])})
		rest = rest[2+i+1:]
	}
	if len(rest) == 0 {
		return r, ErrMalformed
	}
	rest = rest[1:]

	for len(rest) > 0 && rest[0] != End {
		if len(rest) < 3 {
			return r, ErrMalformed
		}
		i := bytes.IndexByte(rest[2:], Sep)
		if i < 0 {
			return r, ErrMalformed
		}
		r.AIs = append(r.AIs, RosterAI{Difficulty: domain.Difficulty(rest[1]), Name: string(rest[2 : 2+i])})
		rest = rest[2+i+1:]
	}
	if len(rest) == 0 {
		return r, ErrMalformed
	}
	rest = rest[1:]

	i := bytes.IndexByte(rest, End)
	if i < 0 || len(rest) < i+3 {
		return r, ErrMalformed
	}
	r.Code = string(rest[:i])
	r.Speed = float64(rest[i+1]) / 10
	r.Private = rest[i+2] == 1
	return r, nil
}
