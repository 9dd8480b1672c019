package app

import (
	"time"

	"dutch/internal/config"
)

// Pacing holds the delays between visible table effects. Swap, Discard, Draw and SeatSwap
// are animation lengths and shrink as the host's animation speed grows.
type Pacing struct {
	Step          time.Duration
	Think         time.Duration
	Swap          time.Duration
	Discard       time.Duration
	Draw          time.Duration
	DrawExtra     time.Duration
	SeatSwap      time.Duration
	SeatSwapExtra time.Duration
	RoundEnd      time.Duration
	RevealPerSeat time.Duration
	Scoreboard    time.Duration
	Tick          time.Duration
}

// NewPacing converts the millisecond config into durations.
func NewPacing(c config.PacingConfig) Pacing {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return Pacing{
		Step:          ms(c.StepMs),
		Think:         ms(c.ThinkMs),
		Swap:          ms(c.SwapMs),
		Discard:       ms(c.DiscardMs),
		Draw:          ms(c.DrawMs),
		DrawExtra:     ms(c.DrawExtraMs),
		SeatSwap:      ms(c.SeatSwapMs),
		SeatSwapExtra: ms(c.SeatSwapExtraMs),
		RoundEnd:      ms(c.RoundEndMs),
		RevealPerSeat: ms(c.RevealPerSeatMs),
		Scoreboard:    ms(c.ScoreboardMs),
		Tick:          ms(c.TickMs),
	}
}

// Scale divides the animation delays by speed. A non-positive speed leaves them unchanged.
func (p Pacing) Scale(speed float64) Pacing {
	if speed <= 0 {
		return p
	}
	div := func(d time.Duration) time.Duration { return time.Duration(float64(d) / speed) }
	p.Swap = div(p.Swap)
	p.Discard = div(p.Discard)
	p.Draw = div(p.Draw)
	p.SeatSwap = div(p.SeatSwap)
	return p
}
