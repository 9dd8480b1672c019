package protocol

import (
	"errors"
	"fmt"
)

// ErrMalformed reports a payload that does not match its message layout.
var ErrMalformed = errors.New("malformed message")

// Command is a decoded client request.
type Command struct {
	Op byte
	// Action is payload[1] for OpAction.
	Action byte
	// Args are the remaining argument bytes.
	Args []int
	// Code is the join code of an OpJoin request, empty for a public join.
	Code string
}

// actionArgs lists the fixed argument counts following payload[1] for OpAction.
var actionArgs = map[byte]int{
	ActDraw:        0,
	ActTakeDiscard: 0,
	ActSwapHand:    1,
	ActDiscard:     0,
	ActHide:        2,
	ActReveal:      2,
	ActSwapSeats:   4,
	ActAnnounce:    1,
}

// opArgs lists the fixed argument counts following payload[0].
var opArgs = map[byte]int{
	OpSpeed:      1,
	OpCreate:     0,
	OpReady:      0,
	OpDifficulty: 1,
	OpLeave:      0,
	OpKick:       1,
	OpAddAI:      0,
	OpRemoveAI:   0,
	OpPrivacy:    0,
	OpLobby:      0,
}

// ParseCommand decodes a client payload. Trailing bytes beyond the layout are ignored.
func ParseCommand(p []byte) (Command, error) {
	if len(p) == 0 {
		return Command{}, ErrMalformed
	}
	cmd := Command{Op: p[0]}

	switch cmd.Op {
	case OpJoin:
		cmd.Code = string(p[1:])
		return cmd, nil

	case OpAction:
		if len(p) < 2 {
			return cmd, ErrMalformed
		}
		cmd.Action = p[1]
		n, ok := actionArgs[cmd.Action]
		if !ok {
			return cmd, fmt.Errorf("%w: action %d", ErrMalformed, int8(cmd.Action))
		}
		if len(p) < 2+n {
			return cmd, ErrMalformed
		}
		cmd.Args = ints(p[2 : 2+n])
		return cmd, nil
	}

	n, ok := opArgs[cmd.Op]
	if !ok {
		return cmd, fmt.Errorf("%w: op %d", ErrMalformed, cmd.Op)
	}
	if len(p) < 1+n {
		return cmd, ErrMalformed
	}
	cmd.Args = ints(p[1 : 1+n])
	return cmd, nil
}

func ints(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

// Client requests, as sent by a remote view.

func SetSpeed(speed float64) []byte { return []byte{OpSpeed, byte(speed * 10)} }
func Join(code string) []byte { return append([]byte{OpJoin}, code...) }
func CreatePrivate() []byte { return []byte{OpCreate} }
func ToggleReady() []byte { return []byte{OpReady} }
func SetDifficulty(d int) []byte { return []byte{OpDifficulty, byte(d)} }
func Leave() []byte { return []byte{OpLeave} }
func Kick(id int) []byte { return []byte{OpKick, byte(id)} }
func AddAI() []byte { return []byte{OpAddAI} }
func RemoveAI() []byte { return []byte{OpRemoveAI} }
func TogglePrivacy() []byte { return []byte{OpPrivacy} }
func ReturnToLobby() []byte { return []byte{OpLobby} }

func Draw() []byte { return []byte{OpAction, ActDraw} }
func TakeDiscard() []byte { return []byte{OpAction, ActTakeDiscard} }
func SwapHandInto(slot int) []byte { return []byte{OpAction, ActSwapHand, byte(slot)} }
func DiscardHand() []byte { return []byte{OpAction, ActDiscard} }
func Look(seat, slot int) []byte { return []byte{OpAction, ActReveal, byte(seat), byte(slot)} }
func Unlook(seat, slot int) []byte {
	return []byte{OpAction, ActHide, byte(seat), byte(slot)}
}
func SwapBetween(seatA, seatB, slotA, slotB int) []byte {
	return []byte{OpAction, ActSwapSeats, byte(seatA), byte(seatB), byte(slotA), byte(slotB)}
}
func AnnounceEnd(seat int) []byte { return []byte{OpAction, ActAnnounce, byte(seat)} }
