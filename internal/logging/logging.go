// Package logging builds the zap logger of the standalone server and adapts it to the
// printf-style logger the table engine writes to.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a JSON production logger, or a console development logger, at level.
func New(level string, development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}

// Printf forwards formatted messages to a zap logger.
type Printf struct {
	s *zap.SugaredLogger
}

// Adapt wraps l; fields already attached to l appear on every entry.
func Adapt(l *zap.Logger) *Printf {
	return &Printf{s: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// With returns an adapter tagging every entry with fields.
func (p *Printf) With(fields ...zap.Field) *Printf {
	return &Printf{s: p.s.Desugar().With(fields...).Sugar()}
}

func (p *Printf) Debug(format string, v ...interface{}) { p.s.Debugf(format, v...) }
func (p *Printf) Info(format string, v ...interface{})  { p.s.Infof(format, v...) }
func (p *Printf) Warn(format string, v ...interface{})  { p.s.Warnf(format, v...) }
func (p *Printf) Error(format string, v ...interface{}) { p.s.Errorf(format, v...) }
