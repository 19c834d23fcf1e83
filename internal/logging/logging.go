package logging

import (
	"fmt"
	"io"
	stdlog "log"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

const rfc3339Milli = "2006-01-02T15:04:05.000Z07:00" // RFC3339 with 3 decimal places, padded

// Setup initializes zerolog with reasonable defaults. The returned function
// closes the log file, if one was opened.
func Setup(levelName, logFile string) (func() error, error) {
	zerolog.TimeFieldFormat = rfc3339Milli
	zerolog.DurationFieldInteger = true
	w, closer, err := openOutput(logFile)
	if err != nil {
		return closer, fmt.Errorf("log_file: %w", err)
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	// set default log level
	if levelName == "" {
		levelName = zerolog.InfoLevel.String()
	}
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return closer, fmt.Errorf("log_level: %w", err)
	}
	log.Logger = log.Logger.Level(level)
	// pass stdlib logger through
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
	return closer, nil
}

func openOutput(logFile string) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch logFile {
	case "-":
		// write JSON to stderr
		return os.Stderr, noop, nil
	case "":
		// write pretty text to stderr
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
		}, noop, nil
	default:
		// append JSON to file
		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			return nil, noop, err
		}
		return f, f.Close, nil
	}
}
