package lib

import (
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	LogTimeFormat = "2006-01-02T15:04:05.000"
)

// consoleWriter writes to stderr so reports printed to stdout can be piped
func consoleWriter(noColor bool) zerolog.ConsoleWriter {
	if runtime.GOOS == "windows" {
		return zerolog.ConsoleWriter{Out: colorable.NewColorableStderr(), NoColor: noColor, TimeFormat: LogTimeFormat}
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor, TimeFormat: LogTimeFormat}
}

// ParseLogLevel returns the zerolog level for name, falling back to info
func ParseLogLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return level
}

func ZeroConsoleLog(level zerolog.Level, noColor bool) {
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(consoleWriter(noColor)).With().Timestamp().Logger()
}

// ZeroConsoleAndFileLog logs to the console and appends JSON lines to filename
func ZeroConsoleAndFileLog(level zerolog.Level, noColor bool, filename string) error {
	zerolog.SetGlobalLevel(level)

	logFile, err := os.OpenFile(filename, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		ZeroConsoleLog(level, noColor)
		log.Error().Err(err).Str("file", filename).Msg("Error setting up log file, logging to console only")
		return err
	}

	var writers []io.Writer
	writers = append(writers, logFile)
	writers = append(writers, consoleWriter(noColor))
	mw := io.MultiWriter(writers...)

	log.Logger = zerolog.New(mw).With().Timestamp().Logger()
	return nil
}
