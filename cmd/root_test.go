package cmd

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovation22/TripleDerby-sub002/sim"
)

func TestRunCmd_FlagDefaults(t *testing.T) {
	tests := []struct {
		flag string
		want string
	}{
		{"seed", "42"},
		{"config", ""},
		{"racecard", ""},
		{"db", ""},
		{"workers", "2"},
		{"races", "1"},
		{"max-ticks", "0"},
		{"log", "error"},
	}
	for _, tt := range tests {
		f := runCmd.Flags().Lookup(tt.flag)
		require.NotNil(t, f, "flag --%s not registered", tt.flag)
		assert.Equal(t, tt.want, f.DefValue, "flag --%s default", tt.flag)
	}
}

func TestPrintResult_ShowsOrderAndCall(t *testing.T) {
	entrants := []sim.Entrant{
		{
			ID: "h1", Name: "Midnight Ledger", Style: sim.StyleStalker,
			Attributes: sim.AttributeSet{Speed: 58, Agility: 54, Stamina: 56, Durability: 52},
			Ceilings:   sim.AttributeSet{Speed: 85, Agility: 82, Stamina: 84, Durability: 80},
			Happiness:  52,
		},
		{
			ID: "h2", Name: "Paper Moon", Style: sim.StyleDeepCloser,
			Attributes: sim.AttributeSet{Speed: 55, Agility: 57, Stamina: 61, Durability: 50},
			Ceilings:   sim.AttributeSet{Speed: 88, Agility: 85, Stamina: 90, Durability: 76},
			Happiness:  50,
		},
	}
	def := sim.RaceDefinition{Name: "Ledger Mile", Distance: 8, Surface: sim.SurfaceTurf, Purse: 2_000_000}
	result, err := sim.Simulate(sim.DefaultConfig(), def, entrants, sim.ConditionGood, sim.NewSimulationKey(3))
	require.NoError(t, err)

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	printResult(result)

	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	output := buf.String()

	assert.Contains(t, output, "Ledger Mile")
	assert.Contains(t, output, result.RunID)
	for _, entry := range result.Order {
		assert.Contains(t, output, entry.Name)
	}
}
