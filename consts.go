package hotcache

import "time"

// Tuning constants fixed by the spec (§4.2). These are not exposed as
// options — the spec treats them as engine constants, not policy.
const (
	weakSizeMultiplier = 8 // W0 = 8 * H0

	hardGrowthFactor   = 1.5
	hardGrowHotPercent = 0.75

	weakGrowthFactor   = 1.5
	weakGrowHotPercent = 0.6

	trimHardMaxCount = 1000
	trimWeakMaxCount = 2000

	trimHardInterval    = 90 * time.Second
	trimWeakInterval    = 270 * time.Second
	trimWeakMaxInterval = 360 * time.Second

	// hardShrinkFactor is the fraction of maxHotSize below which the hard
	// tier shrinks back down after a trim pass. Strictly below the 1.0
	// fraction of maxSize that would trigger the next growth, so grow and
	// shrink can't oscillate against each other every cycle.
	hardShrinkFactor = 0.75
	weakShrinkFactor = 0.75
)
