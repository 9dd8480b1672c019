package app

import (
	"fmt"

	"dutch/internal/domain"
	"dutch/internal/protocol"
)

// Act applies an in-round action sent by the human sitting at seat.
func (s *Service) Act(m *Match, seat int, cmd protocol.Command) ([]Event, error) {
	if m.over {
		return nil, ErrMatchOver
	}
	if cmd.Action == protocol.ActHide {
		return s.hide(m, seat, cmd.Args[0], cmd.Args[1])
	}
	if m.turn.phase == turnIdle || m.turn.seat != seat {
		return nil, ErrNotYourTurn
	}

	switch cmd.Action {
	case protocol.ActDraw:
		return s.draw(m, seat)
	case protocol.ActTakeDiscard:
		return s.takeDiscard(m, seat)
	case protocol.ActSwapHand:
		return s.swapHand(m, seat, cmd.Args[0])
	case protocol.ActDiscard:
		return s.discard(m)
	case protocol.ActReveal:
		return s.look(m, seat, cmd.Args[0], cmd.Args[1])
	case protocol.ActSwapSeats:
		return s.swapSeats(m, seat, cmd.Args[0], cmd.Args[2], cmd.Args[1], cmd.Args[3])
	case protocol.ActAnnounce:
		return s.announce(m, seat, cmd.Args[0])
	}
	return nil, fmt.Errorf("%w: action %d", ErrIllegalAction, int8(cmd.Action))
}

func illegal(err error) error { return fmt.Errorf("%w: %w", ErrIllegalAction, err) }

func (s *Service) draw(m *Match, seat int) ([]Event, error) {
	if m.turn.phase != turnAwaiting {
		return nil, ErrIllegalAction
	}
	c, err := m.Game.DrawFromPile()
	if err != nil {
		return nil, err
	}
	m.turn.phase = turnHolding
	m.turn.fromDiscard = false

	hand := private(EventHandCard, seat, protocol.HandCard(c, false))
	hand.Delay = m.pace.Draw + m.pace.DrawExtra
	return []Event{broadcast(EventDrew, protocol.DrawNotice()), hand}, nil
}

func (s *Service) takeDiscard(m *Match, seat int) ([]Event, error) {
	if m.turn.phase != turnAwaiting {
		return nil, ErrIllegalAction
	}
	if m.Game.Piles().DiscardCount() == 0 {
		return []Event{broadcast(EventActiveSeat, protocol.ActiveSeat(seat))}, nil
	}
	c, err := m.Game.TakeDiscard()
	if err != nil {
		return nil, err
	}
	m.turn.phase = turnHolding
	m.turn.fromDiscard = true

	below, belowOK := m.Game.Piles().TopDiscard()
	return []Event{
		broadcast(EventTookDiscard, protocol.TookDiscard(c, below, belowOK)),
		private(EventHandCard, seat, protocol.HandCard(c, true)),
	}, nil
}

func (s *Service) swapHand(m *Match, seat, slot int) ([]Event, error) {
	if m.turn.phase != turnHolding {
		return nil, ErrIllegalAction
	}
	c := *m.Game.Active().Hand
	if _, err := m.Game.SwapHandIntoDeck(slot); err != nil {
		return nil, illegal(err)
	}
	m.observeReplace(seat, slot, c, m.turn.fromDiscard)

	top, topOK, below, belowOK := m.discardTops()
	evs := []Event{broadcast(EventSwappedHand, protocol.SwapHand(seat, slot, top, topOK, below, belowOK))}
	return append(evs, s.endTurn(m)...), nil
}

func (s *Service) discard(m *Match) ([]Event, error) {
	if m.turn.phase == turnAwaiting {
		return nil, ErrIllegalAction
	}
	c, err := m.Game.DiscardHand()
	if err != nil {
		return nil, illegal(err)
	}
	below, belowOK := m.Game.Piles().SecondDiscard()
	evs := []Event{broadcast(EventDiscarded, protocol.Discarded(c, below, belowOK))}
	return append(evs, s.endTurn(m)...), nil
}

// power returns the unused power of the card in hand.
func (s *Service) power(m *Match) domain.Power {
	hand := m.Game.Active().Hand
	if m.turn.phase != turnHolding || m.turn.fromDiscard || hand == nil || !hand.HasPower() {
		return domain.PowerNone
	}
	return hand.Power()
}

// look reveals a card privately: own slot for 7/8, any slot for 9/10, an opposing slot
// for a King which then waits for the swap decision.
func (s *Service) look(m *Match, seat, target, slot int) ([]Event, error) {
	p := s.power(m)
	switch {
	case p == domain.PowerLookOwn && target == seat:
	case p == domain.PowerLookAny:
	case p == domain.PowerKing && target != seat:
	default:
		return nil, ErrIllegalAction
	}
	c, err := m.Game.CardAt(target, slot)
	if err != nil {
		return nil, illegal(err)
	}
	// The phase only moves once CardAt accepted the target.
	m.remember(seat, reveal{seat: target, slot: slot, card: c})
	if p == domain.PowerKing {
		m.turn.phase = turnKing
		m.turn.kingSeat, m.turn.kingSlot = target, slot
	} else {
		m.turn.phase = turnPowerUsed
	}
	return []Event{private(EventRevealed, seat, protocol.Reveal(c, target, slot))}, nil
}

// hide turns the card seat last looked at face down again. It echoes the card seen at
// look time, so it never exposes a slot the seat was not shown.
func (s *Service) hide(m *Match, seat, target, slot int) ([]Event, error) {
	r, ok := m.shown[seat]
	if !ok {
		return nil, ErrNotYourTurn
	}
	if r.seat != target || r.slot != slot {
		return nil, ErrIllegalAction
	}
	delete(m.shown, seat)
	return []Event{private(EventHidden, seat, protocol.Hide(r.card, target, slot))}, nil
}

// swapSeats exchanges two slots with a Jack or Queen, or completes a King swap between the
// looked-at slot and one of the actor's own slots.
func (s *Service) swapSeats(m *Match, seat, seatA, slotA, seatB, slotB int) ([]Event, error) {
	switch m.turn.phase {
	case turnKing:
		k := m.turn
		if seatB == k.kingSeat && slotB == k.kingSlot {
			seatA, slotA, seatB, slotB = seatB, slotB, seatA, slotA
		}
		if seatA != k.kingSeat || slotA != k.kingSlot || seatB != seat {
			return nil, ErrIllegalAction
		}
	case turnHolding:
		if s.power(m) != domain.PowerBlindSwap {
			return nil, ErrIllegalAction
		}
	default:
		return nil, ErrIllegalAction
	}

	if err := m.Game.SwapSlots(seatA, slotA, seatB, slotB); err != nil {
		return nil, illegal(err)
	}
	m.turn.phase = turnPowerUsed
	m.observeSwap(seatA, slotA, seatB, slotB)
	return []Event{broadcast(EventSwapSeats, protocol.SwapSeats(seatA, seatB, slotA, slotB))}, nil
}

func (s *Service) announce(m *Match, seat, target int) ([]Event, error) {
	if target != seat || !m.Game.Announce(seat) {
		return nil, ErrIllegalAction
	}
	return []Event{broadcast(EventAnnounced, protocol.Announce(seat))}, nil
}
