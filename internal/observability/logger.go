package observability

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Terminals get console output, everything else JSON.
func NewLogger(level string, out io.Writer) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	if out == nil {
		out = os.Stderr
	}

	if file, ok := out.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
		out = zerolog.ConsoleWriter{Out: file, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(out).Level(parsed).With().Timestamp().Logger(), nil
}
