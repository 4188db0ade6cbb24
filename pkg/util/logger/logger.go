package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	formatJSON    = "json"
	formatConsole = "console"
)

// Prm groups Logger's parameters.
type Prm struct {
	level    zap.AtomicLevel
	encoding string
}

// SetLevelString sets minimum logging level. Unknown levels are rejected.
func (p *Prm) SetLevelString(s string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return fmt.Errorf("invalid logger level %q: %w", s, err)
	}
	p.level = zap.NewAtomicLevelAt(lvl)
	return nil
}

// SetEncoding sets logger encoding: "console" or "json".
func (p *Prm) SetEncoding(s string) error {
	switch f := strings.ToLower(s); f {
	case formatConsole, formatJSON:
		p.encoding = f
		return nil
	default:
		return fmt.Errorf("invalid logger encoding %q", s)
	}
}

// NewLogger constructs zap.Logger writing to stderr. Info level and console
// encoding are used unless set in prm.
func NewLogger(prm *Prm) (*zap.Logger, error) {
	if prm == nil {
		prm = new(Prm)
	}

	c := zap.NewProductionConfig()

	c.OutputPaths = []string{"stderr"}
	c.ErrorOutputPaths = []string{"stderr"}
	c.Sampling = nil

	c.Level = prm.level
	if c.Level == (zap.AtomicLevel{}) {
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	c.Encoding = prm.encoding
	if c.Encoding == "" {
		c.Encoding = formatConsole
	}

	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := c.Build(
		zap.AddStacktrace(zap.NewAtomicLevelAt(zap.FatalLevel)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	return l, nil
}
