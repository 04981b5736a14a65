// Package logging builds the structured loggers used by the Lambda functions and CLI.
package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

// ParseLevel parses debug, info, warn or error (any case). Anything else is info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// New returns a JSON logger writing to w at the given level.
func New(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// FromLambda returns l annotated with the Lambda request id carried by ctx.
// Outside a Lambda invocation l is returned unchanged.
func FromLambda(ctx context.Context, l *slog.Logger) *slog.Logger {
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		return l.With("requestId", lc.AwsRequestID)
	}
	return l
}
