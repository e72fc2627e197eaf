package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"nocookies/internal/config"
)

func TestSkippedWithoutDatabase(t *testing.T) {
	cfg := &config.Cfg{}
	assert.NoError(t, Run(cfg, zap.NewNop()))
	assert.Error(t, Down(cfg, zap.NewNop()))
}

func TestMigrateLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &migrateLogger{log: zap.New(core)}

	assert.True(t, l.Verbose())
	l.Printf("applied %d", 1)
	assert.Equal(t, "applied 1", logs.All()[0].Message)

	quiet := &migrateLogger{log: zap.NewNop()}
	assert.False(t, quiet.Verbose())
}
