package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayouts_FullFieldSumsToPurse(t *testing.T) {
	// The default shares sum to 1.0, so with a field covering the whole
	// table the payouts sum to exactly the purse, whole cents only.
	cfg := DefaultConfig()
	const purse = int64(12_345_67) // $12,345.67

	for fieldSize := len(cfg.PurseShares); fieldSize <= 14; fieldSize++ {
		payouts := Payouts(cfg, purse, fieldSize)
		var total int64
		for _, p := range payouts {
			total += p
		}
		assert.Equal(t, purse, total, "field size %d", fieldSize)
	}
}

func TestPayouts_WinnerLargestAndDecreasing(t *testing.T) {
	cfg := DefaultConfig()
	payouts := Payouts(cfg, 1_000_000, 10)
	for i := 1; i < len(payouts); i++ {
		if payouts[i] > payouts[i-1] {
			t.Fatalf("place %d payout %d exceeds place %d payout %d", i+1, payouts[i], i, payouts[i-1])
		}
	}
	if payouts[0] <= payouts[1] {
		t.Fatalf("winner share %d not the largest", payouts[0])
	}
}

func TestPayouts_ZeroBeyondCutoff(t *testing.T) {
	cfg := DefaultConfig()
	payouts := Payouts(cfg, 1_000_000, 12)
	for place := len(cfg.PurseShares); place < 12; place++ {
		assert.Zero(t, payouts[place], "place %d", place+1)
	}
}

func TestPayouts_SmallFieldAndEdgeCases(t *testing.T) {
	cfg := DefaultConfig()

	// Field of 1: winner takes only the winner's share.
	solo := Payouts(cfg, 100_000, 1)
	assert.Len(t, solo, 1)
	assert.Equal(t, int64(60_000), solo[0])

	// Zero purse pays nothing.
	for _, p := range Payouts(cfg, 0, 8) {
		assert.Zero(t, p)
	}
}
