package app

import (
	"dutch/internal/bot"
	"dutch/internal/domain"
	"dutch/internal/protocol"
)

// aiTurn plays a whole turn for an agent: take the discard top into a slot, or draw and
// resolve the drawn card.
func (s *Service) aiTurn(m *Match, a *bot.Agent) []Event {
	top, ok := m.Game.Piles().TopDiscard()
	slot := a.WantDiscard(top, ok)
	if slot < 0 {
		return s.aiDraw(m, a)
	}

	c, err := m.Game.TakeDiscard()
	if err != nil {
		s.log.Error("seat %d take discard: %v", a.Seat, err)
		return s.aiDraw(m, a)
	}
	below, belowOK := m.Game.Piles().TopDiscard()
	return []Event{
		broadcast(EventTookDiscard, protocol.TookDiscard(c, below, belowOK)),
		after(m.pace.Discard, func() []Event { return s.aiSwap(m, a, slot, c, true) }),
	}
}

// aiDraw draws from the pile and resolves the card after the agent had time to think.
func (s *Service) aiDraw(m *Match, a *bot.Agent) []Event {
	c, err := m.Game.DrawFromPile()
	if err != nil {
		s.log.Error("seat %d draw: %v", a.Seat, err)
		return s.aiFinish(m, a)
	}
	return []Event{
		broadcast(EventDrew, protocol.DrawNotice()),
		after(m.pace.Step+m.pace.Think, func() []Event { return s.aiResolve(m, a, c, false) }),
	}
}

// aiResolve applies the agent's decision for the card in hand. fromDiscard marks a card
// everyone saw, which also never carries a power.
func (s *Service) aiResolve(m *Match, a *bot.Agent, c domain.Card, fromDiscard bool) []Event {
	act := a.Decide(c)
	switch act.Kind {
	case bot.ActionSwap:
		return s.aiSwap(m, a, act.Slot, c, fromDiscard)

	case bot.ActionLookOwn, bot.ActionLookAny:
		seat := act.Seat
		if act.Kind == bot.ActionLookOwn {
			seat = a.Seat
		}
		seen, err := m.Game.CardAt(seat, act.Slot)
		if err != nil {
			s.log.Error("seat %d look: %v", a.Seat, err)
		} else {
			a.Observe(seat, act.Slot, seen)
		}
		return s.aiDiscard(m, a)

	case bot.ActionBlindSwap:
		return s.aiSwapSlots(m, a, act.Seat, act.Slot, act.OtherSeat, act.OtherSlot)

	case bot.ActionKing:
		seen, err := m.Game.CardAt(act.Seat, act.Slot)
		if err != nil {
			s.log.Error("seat %d king look: %v", a.Seat, err)
			return s.aiDiscard(m, a)
		}
		a.Observe(act.Seat, act.Slot, seen)
		if !a.AcceptKingSwap(act, seen) {
			return s.aiDiscard(m, a)
		}
		return s.aiSwapSlots(m, a, act.Seat, act.Slot, a.Seat, act.OtherSlot)
	}
	return s.aiDiscard(m, a)
}

func (s *Service) aiSwap(m *Match, a *bot.Agent, slot int, c domain.Card, public bool) []Event {
	if _, err := m.Game.SwapHandIntoDeck(slot); err != nil {
		s.log.Error("seat %d swap into %d: %v", a.Seat, slot, err)
		return s.aiDiscard(m, a)
	}
	m.observeReplace(a.Seat, slot, c, public)
	a.Observe(a.Seat, slot, c)

	top, topOK, below, belowOK := m.discardTops()
	return []Event{
		broadcast(EventSwappedHand, protocol.SwapHand(a.Seat, slot, top, topOK, below, belowOK)),
		after(m.pace.Swap, func() []Event { return s.aiFinish(m, a) }),
	}
}

func (s *Service) aiSwapSlots(m *Match, a *bot.Agent, seatA, slotA, seatB, slotB int) []Event {
	if err := m.Game.SwapSlots(seatA, slotA, seatB, slotB); err != nil {
		s.log.Error("seat %d swap slots: %v", a.Seat, err)
		return s.aiDiscard(m, a)
	}
	m.observeSwap(seatA, slotA, seatB, slotB)
	return []Event{
		broadcast(EventSwapSeats, protocol.SwapSeats(seatA, seatB, slotA, slotB)),
		after(m.pace.SeatSwap+m.pace.SeatSwapExtra, func() []Event { return s.aiDiscard(m, a) }),
	}
}

func (s *Service) aiDiscard(m *Match, a *bot.Agent) []Event {
	c, err := m.Game.DiscardHand()
	if err != nil {
		s.log.Error("seat %d discard: %v", a.Seat, err)
		return s.aiFinish(m, a)
	}
	below, belowOK := m.Game.Piles().SecondDiscard()
	return []Event{
		broadcast(EventDiscarded, protocol.Discarded(c, below, belowOK)),
		after(m.pace.Discard, func() []Event { return s.aiFinish(m, a) }),
	}
}

// aiFinish lets the agent announce the end of the round, then passes the turn.
func (s *Service) aiFinish(m *Match, a *bot.Agent) []Event {
	var evs []Event
	if _, announced := m.Game.Announcer(); !announced && a.CallEnd() {
		m.Game.Announce(a.Seat)
		evs = append(evs, broadcast(EventAnnounced, protocol.Announce(a.Seat)))
	}
	return append(evs, s.endTurn(m)...)
}
