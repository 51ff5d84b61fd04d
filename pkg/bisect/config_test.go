package bisect

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigFromFile(t *testing.T) {
	yml := `
priorityAdd: 42
excludeGroupRegex: "Development.*"
cloneBinary: "my-clone-job"
requestTimeout: 30000
retries: 5
backoff: 500
backoffIncrement: 250
maxBackoff: 2000
`

	config, err := GetConfigFromFile(strings.NewReader(yml))
	if !assert.Nil(t, err, "GetConfigFromFile returned an error") {
		return
	}

	assert.Equal(t, 42, config.PriorityAdd, "Mismatch in config field")
	assert.Equal(t, "Development.*", config.ExcludeGroupRegex, "Mismatch in config field")
	assert.Equal(t, "my-clone-job", config.CloneBinary, "Mismatch in config field")
	assert.Equal(t, "openqa-cli", config.CLIBinary, "Omitted field should fall back to its default")
	assert.Equal(t, 30*time.Second, config.RequestTimeout, "Durations should be read as milliseconds")
	assert.Equal(t, 5, config.Retry.Retries, "Mismatch in config field")
	assert.Equal(t, 500*time.Millisecond, config.Retry.Backoff, "Durations should be read as milliseconds")
	assert.Equal(t, 250*time.Millisecond, config.Retry.BackoffIncrement, "Durations should be read as milliseconds")
	assert.Equal(t, 2*time.Second, config.Retry.MaxBackoff, "Durations should be read as milliseconds")
}

func TestDefaultConfig(t *testing.T) {
	config, err := DefaultConfig()
	if !assert.Nil(t, err, "DefaultConfig returned an error") {
		return
	}

	assert.Equal(t, 100, config.PriorityAdd, "Wrong default priority offset")
	assert.Empty(t, config.ExcludeGroupRegex, "Group exclusion should be disabled by default")
	assert.Equal(t, "openqa-clone-job", config.CloneBinary, "Wrong default clone binary")
	assert.Equal(t, "openqa-cli", config.CLIBinary, "Wrong default API binary")
	assert.Equal(t, time.Minute, config.RequestTimeout, "Wrong default request timeout")
	assert.Equal(t, 3, config.Retry.Retries, "Wrong default retry count")
}
