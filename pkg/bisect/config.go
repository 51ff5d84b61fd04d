package bisect

import (
	"io"
	"time"

	"github.com/Wabri/scripts/pkg/openqa"
	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Duration knobs are plain millisecond integers, so yaml decoding and the
// defaults tags agree on one representation.
type configYaml struct {
	PriorityAdd int `yaml:"priorityAdd" default:"100"`

	ExcludeGroupRegex string `yaml:"excludeGroupRegex"`

	CloneBinary string `yaml:"cloneBinary" default:"openqa-clone-job"`
	CLIBinary   string `yaml:"cliBinary" default:"openqa-cli"`

	RequestTimeout int64 `yaml:"requestTimeout" default:"60000"`

	Retries int `yaml:"retries" default:"3"`

	Backoff          int64 `yaml:"backoff" default:"1000"`
	BackoffIncrement int64 `yaml:"backoffIncrement" default:"1000"`
	MaxBackoff       int64 `yaml:"maxBackoff" default:"10000"`
}

// Config holds the tool's tunables: the priority offset for created jobs, the
// group-exclusion pattern, the helper binaries and the HTTP read policy.
type Config struct {
	PriorityAdd int

	ExcludeGroupRegex string

	CloneBinary string
	CLIBinary   string

	RequestTimeout time.Duration

	Retry openqa.RetryConfig
}

// DefaultConfig returns the configuration used when no config file is given.
func DefaultConfig() (*Config, error) {
	return configFromYaml(&configYaml{})
}

// GetConfigFromFile reads in a config in yaml format from a reader and
// initializes the corresponding config struct, filling in defaults for
// omitted values.
func GetConfigFromFile(r io.Reader) (*Config, error) {
	var config configYaml

	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	return configFromYaml(&config)
}

func configFromYaml(config *configYaml) (*Config, error) {
	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	return &Config{
		PriorityAdd: config.PriorityAdd,

		ExcludeGroupRegex: config.ExcludeGroupRegex,

		CloneBinary: config.CloneBinary,
		CLIBinary:   config.CLIBinary,

		RequestTimeout: time.Duration(config.RequestTimeout) * time.Millisecond,

		Retry: openqa.RetryConfig{
			Retries: config.Retries,

			Backoff: time.Duration(config.Backoff) * time.Millisecond,

			BackoffIncrement: time.Duration(config.BackoffIncrement) * time.Millisecond,
			MaxBackoff:       time.Duration(config.MaxBackoff) * time.Millisecond,
		},
	}, nil
}
