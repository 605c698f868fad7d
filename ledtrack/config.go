package ledtrack

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// MatchingAlgorithm selects how validated points are assigned to identities.
type MatchingAlgorithm uint16

const (
	// MatchingAlgorithmGreedy claims points in ascending distance order.
	// Not a global optimum, but the validator guarantees well-separated
	// points, so greedy and optimal coincide in practice.
	MatchingAlgorithmGreedy MatchingAlgorithm = iota
	// MatchingAlgorithmHungarian uses the Hungarian algorithm (Kuhn-Munkres)
	// for optimal assignment.
	MatchingAlgorithmHungarian
)

func (m MatchingAlgorithm) String() string {
	if m == MatchingAlgorithmHungarian {
		return "hungarian"
	}
	return "greedy"
}

// MarshalYAML serializes the algorithm by name.
func (m MatchingAlgorithm) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML accepts "greedy" or "hungarian".
func (m *MatchingAlgorithm) UnmarshalYAML(value *yaml.Node) error {
	switch value.Value {
	case "", "greedy":
		*m = MatchingAlgorithmGreedy
	case "hungarian":
		*m = MatchingAlgorithmHungarian
	default:
		return errors.Errorf("unknown matching algorithm %q", value.Value)
	}
	return nil
}

// Config holds every tunable of the detection and tracking pipeline.
type Config struct {
	// Blob area band in square pixels. Components outside it are ignored.
	MinBlobArea float64 `yaml:"min_blob_area"`
	MaxBlobArea float64 `yaml:"max_blob_area"`

	// Number of markers in the physical pattern. Fixed at 3 for this core.
	ExpectedLEDs int `yaml:"expected_leds"`

	// Candidates from different methods closer than this are fused into one
	// scene point.
	MergeRadius float64 `yaml:"merge_radius"`

	// Geometric gates for an accepted triplet.
	MaxCollinearityError float64 `yaml:"max_collinearity_error"`
	SpacingTolerance     float64 `yaml:"spacing_tolerance"`
	MinLEDDistance       float64 `yaml:"min_led_distance"`
	MaxLEDDistance       float64 `yaml:"max_led_distance"`

	// Maximum per-frame displacement for an identity to keep its point.
	MaxJump float64 `yaml:"max_jump"`

	// After this many consecutive unseen frames for every identity, the next
	// accepted triplet rebinds identities from scratch in line order.
	ReacquireAfter int `yaml:"reacquire_after"`

	// Matching algorithm for identity assignment: "greedy" or "hungarian".
	Matching MatchingAlgorithm `yaml:"matching"`

	// Smoothing filter noise scalars. ProcessNoise tolerates moderate
	// acceleration; MeasurementNoise reflects detection jitter in pixels.
	ProcessNoise     float64 `yaml:"process_noise"`
	MeasurementNoise float64 `yaml:"measurement_noise"`

	// Outlier rejection multiplier for session statistics.
	IQRMultiplier float64 `yaml:"iqr_multiplier"`
	// Below this many samples per identity, outlier filtering is skipped and
	// the statistics are flagged low-confidence.
	MinFilterSamples int `yaml:"min_filter_samples"`

	// Run the four extraction heuristics concurrently. They are read-only
	// over the same input frame and join fully before fusion.
	ParallelExtraction bool `yaml:"parallel_extraction"`
}

// DefaultConfig returns pipeline parameters calibrated for three infrared
// LEDs on a helmet pattern filmed at roughly 1280x720.
func DefaultConfig() Config {
	return Config{
		MinBlobArea: 30,
		MaxBlobArea: 300,

		ExpectedLEDs: 3,

		MergeRadius: 20.0,

		// Pattern constraints: three markers on a line, equally spaced.
		MaxCollinearityError: 5.0,
		SpacingTolerance:     0.10,
		MinLEDDistance:       50.0,
		MaxLEDDistance:       400.0,

		MaxJump:        150.0,
		ReacquireAfter: 30,
		Matching:       MatchingAlgorithmGreedy,

		ProcessNoise:     1.0,
		MeasurementNoise: 5.0,

		IQRMultiplier:    3.0,
		MinFilterSamples: 10,

		ParallelExtraction: false,
	}
}

// LoadConfig reads a yaml config file on top of the defaults, so a partial
// file only overrides the keys it names.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "can't read config file %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "can't parse config file %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate rejects parameter combinations the pipeline can't work with.
func (cfg Config) Validate() error {
	if cfg.ExpectedLEDs != 3 {
		return errors.Errorf("expected_leds must be 3, got %d", cfg.ExpectedLEDs)
	}
	if cfg.MinBlobArea <= 0 || cfg.MaxBlobArea <= cfg.MinBlobArea {
		return errors.Errorf("invalid blob area band: [%f, %f]", cfg.MinBlobArea, cfg.MaxBlobArea)
	}
	if cfg.MinLEDDistance <= 0 || cfg.MaxLEDDistance <= cfg.MinLEDDistance {
		return errors.Errorf("invalid LED distance band: [%f, %f]", cfg.MinLEDDistance, cfg.MaxLEDDistance)
	}
	if cfg.SpacingTolerance <= 0 || cfg.SpacingTolerance >= 1 {
		return errors.Errorf("spacing_tolerance must be in (0, 1), got %f", cfg.SpacingTolerance)
	}
	if cfg.MaxCollinearityError <= 0 {
		return errors.Errorf("max_collinearity_error must be positive, got %f", cfg.MaxCollinearityError)
	}
	if cfg.MeasurementNoise <= 0 || cfg.ProcessNoise <= 0 {
		return errors.Errorf("noise scalars must be positive, got Q=%f R=%f", cfg.ProcessNoise, cfg.MeasurementNoise)
	}
	return nil
}
