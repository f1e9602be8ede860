package telemetry

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// stdoutWriter resolves os.Stdout on every write so redirects made after
// startup (tests, supervisors) are honoured.
type stdoutWriter struct{}

func (stdoutWriter) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

var logger = newLogger()

func newLogger() zerolog.Logger {
	zerolog.TimestampFieldName = "ts"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "msg"
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(stdoutWriter{}).With().Timestamp().Logger()
}

// Logger returns the process-wide structured logger.
func Logger() *zerolog.Logger {
	return &logger
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	logger.Info().Fields(fields).Msg(msg)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	logger.Warn().Fields(fields).Msg(msg)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	logger.Error().Fields(fields).Msg(msg)
}
