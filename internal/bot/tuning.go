package bot

// Point thresholds of the hard strategy.
const (
	// hardTakeFirst: with nothing memorized, take the discard top below this value.
	hardTakeFirst = 6
	// hardTakeLow: a discard top below this value is always worth taking.
	hardTakeLow = 4
	// hardTakeSwitch: above hardTakeLow, take the discard top only below this value and
	// only when it beats the worst known own card.
	hardTakeSwitch = 8
	// hardKeepDrawn: a powerless drawn card below this value fills an unknown slot.
	hardKeepDrawn = 5

	// End-of-round calls: three known slots scoring below hardEndThree with one chance in
	// hardEndOdds, or four known slots scoring below hardEndFour.
	hardEndThree = 6
	hardEndFour  = 10
	hardEndOdds  = 3
)
