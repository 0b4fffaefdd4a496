package http_utils

import (
	"testing"

	"github.com/pyneda/htin/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestClientOptionsFromConfigHeaders(t *testing.T) {
	config.SetDefaultConfig()
	t.Cleanup(func() { viper.Set("navigation.headers", map[string]string{}) })

	viper.Set("navigation.headers", map[string]string{"X-Team": "red"})
	assert.Equal(t, map[string][]string{"X-Team": {"red"}}, ClientOptionsFromConfig().Headers)

	viper.Set("navigation.headers", "X-Team: blue, Cookie: session=1")
	assert.Equal(t, map[string][]string{
		"X-Team": {"blue"},
		"Cookie": {"session=1"},
	}, ClientOptionsFromConfig().Headers)

	viper.Set("navigation.headers", "")
	assert.Empty(t, ClientOptionsFromConfig().Headers)
}
