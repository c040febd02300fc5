package utils

import (
	"context"

	"github.com/sirupsen/logrus"
)

type logKey struct{}

var fallback = logrus.NewEntry(logrus.StandardLogger())

func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, logKey{}, entry)
}

// Logger returns the request scoped entry, or the standard logger when the
// request did not pass through the request id middleware.
func Logger(ctx context.Context) *logrus.Entry {
	if e, ok := ctx.Value(logKey{}).(*logrus.Entry); ok {
		return e
	}
	return fallback
}
