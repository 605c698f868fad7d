package ledtrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionWholeOrNothing(t *testing.T) {
	session, err := NewTrackerSession(DefaultConfig(), 30.0)
	require.NoError(t, err)

	// Twelve clean frames of a slowly drifting pattern.
	for frameIdx := 0; frameIdx < 12; frameIdx++ {
		dx := float64(frameIdx)
		result, err := session.ProcessPoints(fusedAt(100+dx, 100, 200+dx, 100, 300+dx, 100))
		require.NoError(t, err)
		assert.True(t, result.Success, "frame %d", frameIdx)
		require.Len(t, result.LEDs, 3)
		for id, led := range result.LEDs {
			assert.Equal(t, id, led.Identity)
		}
	}

	// Scattered points with no valid pattern.
	result, err := session.ProcessPoints(fusedAt(100, 100, 150, 400, 500, 250))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, result.LEDs, "a rejected frame must carry zero observations")

	// A valid pattern rotated so far that two identities lose their markers.
	result, err = session.ProcessPoints(fusedAt(111, 100, 111, 250, 111, 400))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, result.LEDs)

	results := session.Results()
	require.Len(t, results, 14)
	for _, r := range results {
		if r.Success {
			assert.Len(t, r.LEDs, 3)
		} else {
			assert.Empty(t, r.LEDs)
		}
	}
}

func TestSessionTimestamps(t *testing.T) {
	session, err := NewTrackerSession(DefaultConfig(), 25.0)
	require.NoError(t, err)

	for frameIdx := 0; frameIdx < 3; frameIdx++ {
		_, err := session.ProcessPoints(nil)
		require.NoError(t, err)
	}
	results := session.Results()
	require.Len(t, results, 3)
	assert.InDelta(t, 0.0, results[0].TimestampSec, 1e-9)
	assert.InDelta(t, 2.0/25.0, results[2].TimestampSec, 1e-9)
}

func TestSessionFinalize(t *testing.T) {
	session, err := NewTrackerSession(DefaultConfig(), 30.0)
	require.NoError(t, err)

	for frameIdx := 0; frameIdx < 15; frameIdx++ {
		_, err := session.ProcessPoints(fusedAt(100, 100, 200, 100, 300, 100))
		require.NoError(t, err)
	}
	_, err = session.ProcessPoints(nil)
	require.NoError(t, err)

	stats := session.Finalize()
	assert.Equal(t, session.ID(), stats.SessionID)
	assert.Equal(t, 16, stats.TotalFrames)
	assert.Equal(t, 15, stats.SuccessfulFrames)
	require.Len(t, stats.LEDs, 3)
	for _, led := range stats.LEDs {
		assert.False(t, led.LowConfidence)
		assert.Equal(t, 15, led.DetectedFrames)
	}
	assert.InDelta(t, 100.0, stats.LEDs[0].MeanPosition.X, 1.0)
	assert.InDelta(t, 300.0, stats.LEDs[2].MeanPosition.X, 1.0)
}

func TestSessionInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExpectedLEDs = 4
	_, err := NewTrackerSession(cfg, 30.0)
	assert.Error(t, err)
}
