package random

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggedSource wraps a Source and logs every draw.
// Successful draws are logged at debug level and failures at warn.
type LoggedSource struct {
	src    Source
	name   string
	logger *zap.Logger
}

// NewLoggedSource creates a LoggedSource that draws from src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(name string, src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, name: name, logger: logger}
}

// Float64 implements Source.
func (l *LoggedSource) Float64(ctx context.Context) (float64, error) {
	start := time.Now()
	v, err := l.src.Float64(ctx)
	if err != nil {
		l.logger.Warn("random draw failed",
			zap.String("provider", l.name),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return 0, err
	}
	l.logger.Debug("random draw",
		zap.String("provider", l.name),
		zap.Float64("value", v),
		zap.Duration("elapsed", time.Since(start)),
	)
	return v, nil
}
