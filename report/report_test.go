package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmdtrack/ledtrack-go/ledtrack"
)

func sampleStats(id uuid.UUID) ledtrack.SessionStatistics {
	return ledtrack.SessionStatistics{
		SessionID:        id,
		TotalFrames:      100,
		SuccessfulFrames: 96,
		SuccessRate:      0.96,
		CollinearityMean: 1.2,
		CollinearityMax:  3.8,
		SpacingRatioMean: 1.01,
		SpacingRatioStd:  0.02,
		LEDs: []ledtrack.LEDStatistics{
			{
				Identity:       0,
				DetectedFrames: 96,
				MeanPosition:   ledtrack.NewPoint(150.5, 240.2),
				StdDeviation:   0.8,
			},
			{Identity: 1, DetectedFrames: 96, MeanPosition: ledtrack.NewPoint(320.1, 240.0)},
			{Identity: 2},
		},
	}
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	writer, err := NewWriter(dir)
	require.NoError(t, err)

	id := uuid.New()
	meta := Metadata{
		SessionID:   id.String(),
		Video:       "session.mp4",
		GeneratedAt: time.Now(),
		TotalFrames: 100,
	}
	results := []ledtrack.FrameResult{
		{FrameIndex: 0, Success: true, CollinearityError: 1.1, SpacingRatio: 1.0},
		{FrameIndex: 1, Success: false},
	}

	require.NoError(t, writer.WriteAll(meta, sampleStats(id), results))

	// Full results round-trip through JSON.
	data, err := os.ReadFile(filepath.Join(dir, resultsFile))
	require.NoError(t, err)
	var full fullResults
	require.NoError(t, json.Unmarshal(data, &full))
	assert.Equal(t, id.String(), full.Metadata.SessionID)
	assert.Len(t, full.FrameResults, 2)
	assert.Equal(t, 96, full.Statistics.SuccessfulFrames)

	// Summary holds the statistics only.
	data, err = os.ReadFile(filepath.Join(dir, summaryFile))
	require.NoError(t, err)
	var summary ledtrack.SessionStatistics
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.InDelta(t, 0.96, summary.SuccessRate, 1e-9)
	require.Len(t, summary.LEDs, 3)

	// The text report mentions the essentials.
	data, err = os.ReadFile(filepath.Join(dir, reportFile))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, id.String())
	assert.Contains(t, text, "session.mp4")
	assert.Contains(t, text, "LED 1:")
	assert.Contains(t, text, "(150.50, 240.20)")
	assert.Contains(t, text, "No valid detections")
	assert.Contains(t, text, "VERY GOOD")
}

func TestRateVerdict(t *testing.T) {
	assert.Contains(t, rateVerdict(0.995), "EXCELLENT")
	assert.Contains(t, rateVerdict(0.97), "VERY GOOD")
	assert.Contains(t, rateVerdict(0.92), "GOOD")
	assert.Contains(t, rateVerdict(0.5), "NEEDS IMPROVEMENT")
}
