package app

import (
	"dutch/internal/bot"
	"dutch/internal/domain"
	"dutch/internal/protocol"
)

func (t *Table) join(p Peer) error {
	switch {
	case t.closed:
		return ErrTableClosed
	case t.started:
		return ErrTableStarted
	case len(t.members) >= t.required:
		return ErrTableFull
	}
	if p.Speed <= 0 {
		p.Speed = DefaultSpeed
	}
	t.members = append(t.members, &member{Peer: p, seat: -1})
	t.cancelCountdown()
	t.sendRoster()
	t.log.Info("table %s: client %d joined", t.code, p.ID)
	return nil
}

func (t *Table) leave(id int) {
	i, mb := t.member(id)
	if mb == nil {
		return
	}
	t.members = append(t.members[:i], t.members[i+1:]...)
	t.broadcast(protocol.ClientLeft(id))
	t.log.Info("table %s: client %d left", t.code, id)

	if len(t.members) == 0 {
		t.close()
		return
	}
	if !t.started {
		for _, o := range t.members {
			o.ready = false
		}
		t.cancelCountdown()
		t.sendRoster()
		return
	}

	if id == t.hostID {
		t.match.HostLeft = true
	}
	evs, err := t.svc.TakeOver(t.match, mb.seat)
	if err != nil {
		t.log.Debug("table %s: take over seat %d: %v", t.code, mb.seat, err)
		return
	}
	t.log.Info("table %s: AI took over seat %d", t.code, mb.seat)
	t.play(t.gen, evs)
}

func (t *Table) close() {
	t.closed = true
	t.counting = false
	t.gen++
	if t.opts.Observer != nil {
		t.opts.Observer.Closed(t)
	}
}

func (t *Table) kick(host *member, target int) {
	if len(t.members) == 0 || t.members[0] != host || target == host.ID {
		return
	}
	_, mb := t.member(target)
	if mb == nil {
		return
	}
	t.leave(target)
	t.send(mb, protocol.Kicked())
	if t.opts.Observer != nil {
		t.opts.Observer.Detached(t, target)
	}
}

func (t *Table) toggleReady(mb *member) {
	mb.ready = !mb.ready
	t.broadcast(protocol.ReadyFlag(mb.ID, mb.ready))
	if !mb.ready {
		t.cancelCountdown()
		return
	}
	for _, o := range t.members {
		if !o.ready {
			return
		}
	}
	t.startCountdown()
}

func (t *Table) startCountdown() {
	if t.counting {
		return
	}
	t.counting = true
	t.gen++
	t.tick(t.gen, t.opts.Countdown)
}

func (t *Table) cancelCountdown() {
	if t.counting {
		t.counting = false
		t.gen++
	}
}

func (t *Table) tick(gen uint64, n int) {
	if gen != t.gen || !t.counting {
		return
	}
	if n <= 0 {
		t.counting = false
		t.start()
		return
	}
	t.broadcast(protocol.Countdown(n))
	if n == min(seatOrderAt, t.opts.Countdown) {
		t.sendSeatOrder()
	}
	t.schedule(t.opts.Pacing.Tick, func() { t.tick(gen, n-1) })
}

// sendSeatOrder sends every member the seat ids starting from its own seat.
func (t *Table) sendSeatOrder() {
	order := make([]int, t.required)
	for i := range order {
		order[i] = i
	}
	for i, mb := range t.members {
		rotated := append(append([]int(nil), order[i:]...), order[:i]...)
		t.send(mb, protocol.SeatOrder(rotated))
	}
}

func (t *Table) start() {
	if t.opts.Countdown <= 0 {
		t.sendSeatOrder()
	}
	humans := make([]domain.Human, len(t.members))
	for i, mb := range t.members {
		mb.seat = i
		humans[i] = domain.Human{ClientID: mb.ID, Name: mb.Name}
	}
	pace := t.opts.Pacing.Scale(t.members[0].Speed)
	m, evs, err := t.svc.StartMatch(humans, t.required-len(humans), t.level, pace)
	if err != nil {
		t.log.Error("table %s: start: %v", t.code, err)
		return
	}
	t.match = m
	t.started = true
	t.hostID = t.members[0].ID
	t.log.Info("table %s: game started with %d seats", t.code, t.required)
	t.play(t.gen, evs)
}

// backToLobby reopens the waiting room once the final scoreboard was shown.
func (t *Table) backToLobby() {
	if !t.started || t.match == nil || !t.match.Over() {
		return
	}
	t.gen++
	t.started = false
	t.match = nil
	for _, mb := range t.members {
		mb.ready = false
		mb.seat = -1
	}
	t.broadcast(protocol.BackToLobby())
	t.sendRoster()
}

func (t *Table) setDifficulty(d int) {
	level := domain.Difficulty(d)
	if level != domain.DifficultyEasy && level != domain.DifficultyHard {
		return
	}
	t.level = level
	t.broadcast(protocol.DifficultyChanged(level))
}

func (t *Table) addAI() {
	if t.required >= domain.MaxSeats {
		return
	}
	t.required++
	t.sendRoster()
}

func (t *Table) removeAI() {
	if t.required <= MinRequiredSeats || t.required <= len(t.members) {
		return
	}
	t.required--
	t.broadcast(protocol.AIRemoved())
}

func (t *Table) sendRoster() {
	r := protocol.Roster{Code: t.code, Private: t.private, Speed: DefaultSpeed}
	if len(t.members) > 0 {
		r.Speed = t.members[0].Speed
	}
	for _, mb := range t.members {
		r.Members = append(r.Members, protocol.RosterMember{ID: mb.ID, Ready: mb.ready, Name: mb.Name})
	}
	for i := 0; i < t.required-len(t.members); i++ {
		r.AIs = append(r.AIs, protocol.RosterAI{Difficulty: t.level, Name: bot.Name(i)})
	}
	t.broadcast(protocol.EncodeRoster(r))
}
