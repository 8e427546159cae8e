package sim

import "math"

// Payouts splits totalPurse (cents) across the field by the configured
// share table, winner first. Places beyond the table earn nothing. Shares
// are rounded to whole cents and the winner absorbs the rounding
// remainder, so paid places always sum to exactly the table's slice of the
// purse. Pure: no randomness, no side effects.
func Payouts(cfg *Config, totalPurse int64, fieldSize int) []int64 {
	payouts := make([]int64, fieldSize)
	if totalPurse <= 0 || fieldSize == 0 {
		return payouts
	}

	paid := min(fieldSize, len(cfg.PurseShares))
	var tablePortion float64
	for place := 0; place < paid; place++ {
		tablePortion += cfg.PurseShares[place]
	}
	pool := int64(math.Round(float64(totalPurse) * tablePortion))

	var distributed int64
	for place := 1; place < paid; place++ {
		payouts[place] = int64(math.Round(float64(totalPurse) * cfg.PurseShares[place]))
		distributed += payouts[place]
	}
	payouts[0] = pool - distributed
	return payouts
}
