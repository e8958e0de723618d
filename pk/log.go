package pk

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// LogTimeFormat is the timestamp layout of log lines, e.g. [14:03:59].
const LogTimeFormat = "15:04:05"

// Logger returns a console logger writing to the context stderr.
// Levels below info are dropped unless verbose mode is on.
//
//	pk.Logger(ctx).Info().Msgf("Server started http://localhost:%d", port)
func Logger(ctx context.Context) *zerolog.Logger {
	w := OutputFromContext(ctx).Stderr
	level := zerolog.InfoLevel
	if Verbose(ctx) {
		level = zerolog.DebugLevel
	}
	return newLogger(w, level)
}

func newLogger(w io.Writer, level zerolog.Level) *zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: LogTimeFormat,
		NoColor:    !colorEnabled(w),
	}
	l := zerolog.New(cw).Level(level).With().Timestamp().Logger()
	return &l
}

func colorEnabled(w io.Writer) bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
