package app

import "time"

// EventKind identifies emitted table events for logging and tests.
type EventKind string

const (
	EventActiveSeat  EventKind = "active_seat"
	EventHandCard    EventKind = "hand_card"
	EventDrew        EventKind = "drew"
	EventTookDiscard EventKind = "took_discard"
	EventSwappedHand EventKind = "swapped_hand"
	EventDiscarded   EventKind = "discarded"
	EventRevealed    EventKind = "revealed"
	EventHidden      EventKind = "hidden"
	EventSwapSeats   EventKind = "swap_seats"
	EventAnnounced   EventKind = "announced"
	EventRevealAll   EventKind = "reveal_all"
	EventScores      EventKind = "scores"
	EventGameOver    EventKind = "game_over"
	EventNewRound    EventKind = "new_round"
	// EventStep carries no payload; it only paces a continuation.
	EventStep EventKind = "step"
)

// Event is an encoded message with optional targeted recipients.
//
// Events form a script: the table waits Delay before delivering Payload, then runs Then
// and plays the events it returns ahead of the rest of the script.
type Event struct {
	Kind    EventKind
	Payload []byte
	Seats   []int // seat ids; empty means broadcast
	Delay   time.Duration
	Then    func() []Event
}

func broadcast(kind EventKind, payload []byte) Event {
	return Event{Kind: kind, Payload: payload}
}

func private(kind EventKind, seat int, payload []byte) Event {
	return Event{Kind: kind, Payload: payload, Seats: []int{seat}}
}

func after(d time.Duration, then func() []Event) Event {
	return Event{Kind: EventStep, Delay: d, Then: then}
}
