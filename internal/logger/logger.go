package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Zap struct {
	*zap.Logger
}

// New builds a development logger for env "dev" and a JSON production
// logger otherwise.
func New(env, level string) (*Zap, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("unknown log level %q: %w", level, err)
	}

	var zcfg zap.Config
	if env == "dev" {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	return &Zap{Logger: l.Named("nocookies")}, nil
}

func Nop() *Zap {
	return &Zap{Logger: zap.NewNop()}
}
