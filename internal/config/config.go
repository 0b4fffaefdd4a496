package config

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Version is reported in the user agent and in scan reports
const Version = "1.0.0"

// DefaultUserAgent identifies the scanner to the target
const DefaultUserAgent = "Mozilla/5.0 (compatible; htin/" + Version + "; +HTML injection scanner)"

// EnvPrefix is prepended to configuration keys read from the environment, e.g. HTIN_SCAN_DELAY
const EnvPrefix = "HTIN"

func LoadConfig() {
	viper.SetConfigName("config")     // name of config file (without extension)
	viper.SetConfigType("yaml")       // REQUIRED if the config file does not have the extension in the name
	viper.AddConfigPath("/etc/htin/") // path to look for the config file in
	viper.AddConfigPath(".")          // optionally look for config in the working directory
	setupEnv()
	SetDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Debug().Msg("Config file not found, using defaults")
		} else {
			log.Panic().Err(err).Msg("Fatal error reading config file")
		}
	}
}

// LoadConfigFile reads the given file on top of the defaults
func LoadConfigFile(path string) error {
	viper.SetConfigFile(path)
	setupEnv()
	SetDefaultConfig()
	return viper.ReadInConfig()
}

func setupEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func SetDefaultConfig() {
	// Logging
	viper.SetDefault("logging.console.level", "info")
	viper.SetDefault("logging.file.enabled", false)
	viper.SetDefault("logging.file.path", "htin.log")

	// Navigation
	viper.SetDefault("navigation.user_agent", DefaultUserAgent)
	viper.SetDefault("navigation.timeout", 15)
	viper.SetDefault("navigation.max_redirects", 10)
	viper.SetDefault("navigation.follow_redirects", true)
	viper.SetDefault("navigation.proxy", "")
	viper.SetDefault("navigation.protocol", "http1")
	viper.SetDefault("navigation.insecure_skip_verify", true)
	viper.SetDefault("navigation.headers", map[string]string{})

	// Scan
	viper.SetDefault("scan.levels", []string{"basic", "styled", "dangerous"})
	viper.SetDefault("scan.delay", 0.5)
	viper.SetDefault("scan.concurrency", 1)
	viper.SetDefault("scan.strict_levels", false)

	// Payloads
	viper.SetDefault("payloads.file", "")

	// Report
	viper.SetDefault("report.color", true)
	viper.SetDefault("report.palette.title", "cyan")
	viper.SetDefault("report.palette.confirmed", "red")
	viper.SetDefault("report.palette.tentative", "yellow")
	viper.SetDefault("report.palette.success", "green")
	viper.SetDefault("report.palette.info", "blue")
	viper.SetDefault("report.palette.muted", "white")
}
