package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pyneda/htin/internal/config"
	"github.com/pyneda/htin/pkg/payloads"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPayloadsTest(t *testing.T) *bytes.Buffer {
	t.Helper()
	config.SetDefaultConfig()
	viper.Set("payloads.file", "")
	payloadLevels = nil
	payloadsFormat = "json"
	payloadsOutput = ""

	var out bytes.Buffer
	payloadsCmd.SetOut(&out)
	t.Cleanup(func() { payloadsCmd.SetOut(nil) })
	return &out
}

func TestPayloadsListsSelectedLevels(t *testing.T) {
	out := setupPayloadsTest(t)
	payloadLevels = []string{"basic"}

	require.NoError(t, payloadsCmd.RunE(payloadsCmd, nil))

	var entries []payloads.Entry
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Equal(t, payloads.LevelBasic, entry.Level)
	}
}

func TestPayloadsWritesOutputFile(t *testing.T) {
	out := setupPayloadsTest(t)
	payloadsFormat = "yaml"
	payloadsOutput = filepath.Join(t.TempDir(), "payloads.yaml")

	require.NoError(t, payloadsCmd.RunE(payloadsCmd, nil))

	data, err := os.ReadFile(payloadsOutput)
	require.NoError(t, err)
	assert.Contains(t, string(data), "level: xss")
	assert.Contains(t, out.String(), "payload templates written to")
}

func TestPayloadsRejectsUnknownLevel(t *testing.T) {
	setupPayloadsTest(t)
	payloadLevels = []string{"nope"}
	assert.Error(t, payloadsCmd.RunE(payloadsCmd, nil))
}
