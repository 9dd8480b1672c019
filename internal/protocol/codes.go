// Package protocol encodes and decodes the byte-coded messages exchanged between the table
// server and its remote views. Payload bytes are signed on the wire; negative values are
// written here as their two's complement bytes (End = -1, Sep = -2).
package protocol

// Top-level opcodes, payload[0].
const (
	OpHello      byte = 0 // server: assigned client id
	OpGame       byte = 1 // server: in-round event, payload[1] selects it
	OpSpeed      byte = 63
	OpAction     byte = 64 // client: in-round action, payload[1] selects it
	OpJoin       byte = 65
	OpRoster     byte = 66 // server: roster; client: create a private table
	OpReady      byte = 67
	OpDifficulty byte = 68
	OpLeave      byte = 69 // client: leave; server: client left
	OpKick       byte = 70 // client: kick; server: 70+n countdown ticks
	OpAddAI      byte = 81
	OpRemoveAI   byte = 82
	OpPrivacy    byte = 83
	OpSeatOrder  byte = 84
	OpLobby      byte = 85 // client: back to lobby
	OpKicked     byte = 126

	OpCreate        = OpRoster
	OpCountdownBase = OpKick
)

// Sentinels used as list terminators and "no card" markers.
const (
	End byte = 0xFF // -1
	Sep byte = 0xFE // -2
)

// In-round server events, payload[1] after OpGame.
const (
	EvActive      byte = 1
	EvHand        byte = 2
	EvDrawNotice  byte = 3
	EvSwapHand    byte = 4
	EvHide        byte = 6
	EvReveal      byte = 7
	EvDiscard     byte = 25
	EvTookDiscard byte = 26
	EvSwapSeats   byte = 50
	EvLobby       byte = 85
	EvAnnounce    byte = 0xFF // -1
	EvRevealAll   byte = 0xFE // -2
	EvScores      byte = 0xFD // -3
	EvGameOver    byte = 0xFC // -4
	EvNewRound    byte = 0xFB // -5
)

// In-round client actions, payload[1] after OpAction.
const (
	ActDraw        byte = 2
	ActTakeDiscard byte = 3
	ActSwapHand    byte = 4
	ActDiscard     byte = 5
	ActHide        byte = 6
	ActReveal      byte = 7
	ActSwapSeats   byte = 8
	ActAnnounce    byte = 0xFF // -1
)

// Join refusal reasons, payload[1] after OpJoin.
const (
	JoinFull     byte = 0
	JoinNotFound byte = 1
)
