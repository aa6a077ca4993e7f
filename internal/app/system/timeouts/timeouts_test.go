package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/rekaphub/internal/app/system/timeouts"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(timeouts.Reset)

	timeouts.Configure(timeouts.Config{Short: 7 * time.Second})
	assert.Equal(t, 7*time.Second, timeouts.Short())
	assert.Equal(t, timeouts.DefaultMedium, timeouts.Medium())
	assert.Equal(t, timeouts.DefaultPing, timeouts.Ping())

	timeouts.Reset()
	assert.Equal(t, timeouts.DefaultShort, timeouts.Current().Short)
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, zap.New(core), "recap")
	<-ctx.Done()
	cancel()

	assert.Equal(t, 1, logs.FilterMessage("operation timed out").Len())
}

func TestWithTimeout_NoLogOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	_, cancel := timeouts.WithTimeout(context.Background(), time.Hour, zap.New(core), "recap")
	cancel()

	assert.Equal(t, 0, logs.Len())
}
