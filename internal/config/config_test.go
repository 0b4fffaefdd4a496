package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaultConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaultConfig()

	assert.Equal(t, DefaultUserAgent, viper.GetString("navigation.user_agent"))
	assert.Equal(t, 15, viper.GetInt("navigation.timeout"))
	assert.Equal(t, 10, viper.GetInt("navigation.max_redirects"))
	assert.True(t, viper.GetBool("navigation.follow_redirects"))
	assert.Equal(t, []string{"basic", "styled", "dangerous"}, viper.GetStringSlice("scan.levels"))
	assert.Equal(t, 0.5, viper.GetFloat64("scan.delay"))
	assert.Equal(t, 1, viper.GetInt("scan.concurrency"))
	assert.Equal(t, "red", viper.GetString("report.palette.confirmed"))
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "scan:\n  delay: 0\n  levels: [xss]\nnavigation:\n  protocol: h2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, LoadConfigFile(path))
	assert.Equal(t, 0.0, viper.GetFloat64("scan.delay"))
	assert.Equal(t, []string{"xss"}, viper.GetStringSlice("scan.levels"))
	assert.Equal(t, "h2", viper.GetString("navigation.protocol"))
	assert.Equal(t, 15, viper.GetInt("navigation.timeout"))
}

func TestEnvironmentOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	t.Setenv("HTIN_SCAN_CONCURRENCY", "4")

	setupEnv()
	SetDefaultConfig()
	assert.Equal(t, 4, viper.GetInt("scan.concurrency"))
}
