package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the root logger. Level names follow zerolog ("debug",
// "info", "warn", "error"); an empty level means "info".
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parsing log level %q: %w", level, err)
		}
		lvl = parsed
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Console is New with human-readable output, used by the CLI.
func Console(w io.Writer, level string) (zerolog.Logger, error) {
	return New(zerolog.ConsoleWriter{Out: w, NoColor: true}, level)
}
