package nakama

const (
	// RpcFindMatch is the Nakama RPC id clients call to find, create or join a table by code.
	RpcFindMatch = "dutch_find_match"

	// RpcInvite issues a signed invite for a private table.
	RpcInvite = "dutch_invite"

	// MatchNameDutch is the authoritative match handler name registered with Nakama.
	MatchNameDutch = "dutch_match"
)

// OpPayload carries one binary protocol message in either direction. The byte layout inside
// is the same one spoken over the raw socket.
const OpPayload int64 = 1

const (
	matchTickRate = 10
	labelGame     = "dutch"

	// maxCodeAttempts bounds the search for a join code no other match uses.
	maxCodeAttempts = 8
)
