package assemble

// DefaultGain is the loudness correction applied to raw impulse response
// samples before combination. The value is empirical and was calibrated
// against one measurement set; override it with [WithGain] when it does
// not suit the dataset at hand.
const DefaultGain = 10.0

// Config defines configuration for coefficient assembly.
type Config struct {
	Gain float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Gain: DefaultGain}
}

// WithGain sets the gain-compensation multiplier.
func WithGain(gain float64) Option {
	return func(cfg *Config) {
		if gain > 0 {
			cfg.Gain = gain
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
