package query

// Defaults are the parameter values the matcher uses when a question does
// not state them.
type Defaults struct {
	HeadRows      int     `yaml:"head_rows"`
	TopK          int     `yaml:"distribution_top_k"`
	TopN          int     `yaml:"top_n_default"`
	ZThreshold    float64 `yaml:"zscore_threshold"`
	Trees         int     `yaml:"trees"`
	SampleSize    int     `yaml:"sample_size"`
	Contamination float64 `yaml:"contamination"`
	Seed          uint64  `yaml:"seed"`
}

// StandardDefaults returns the built-in defaults.
func StandardDefaults() Defaults {
	return Defaults{
		HeadRows:      5,
		TopK:          10,
		TopN:          10,
		ZThreshold:    3.0,
		Trees:         100,
		SampleSize:    256,
		Contamination: 0.05,
		Seed:          42,
	}
}

type matchConfig struct {
	dateColumn string
	defaults   Defaults
}

// Option configures Match and Compile.
type Option func(*matchConfig)

// WithDateColumn names the column trend questions bucket by year. Without
// it, trend plans fail validation.
func WithDateColumn(column string) Option {
	return func(c *matchConfig) {
		c.dateColumn = column
	}
}

// WithDefaults replaces the built-in parameter defaults.
func WithDefaults(d Defaults) Option {
	return func(c *matchConfig) {
		c.defaults = d
	}
}

func newMatchConfig(opts []Option) matchConfig {
	cfg := matchConfig{defaults: StandardDefaults()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
