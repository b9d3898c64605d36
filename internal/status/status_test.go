package status

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestConsole(failOnError bool) (*Console, *bytes.Buffer, *bytes.Buffer) {
	var out, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewConsole(&out, logger, failOnError), &out, &logs
}

func TestConsoleMessagesGoToOutput(t *testing.T) {
	c, out, logs := newTestConsole(false)

	c.Message("ALTER TABLE t ADD c int")
	c.LogMessage("failed to add column")
	c.Progress(3, 1)

	assert.Equal(t, "ALTER TABLE t ADD c int\n", out.String())
	assert.Contains(t, logs.String(), "failed to add column")
	assert.Contains(t, logs.String(), "current=1 total=3")
	assert.NotContains(t, logs.String(), "ALTER TABLE")
}

func TestConsoleFailOnError(t *testing.T) {
	c, _, _ := newTestConsole(true)
	assert.True(t, c.FailOnError())

	c, _, _ = newTestConsole(false)
	assert.False(t, c.FailOnError())
}

func TestConsoleStop(t *testing.T) {
	c, _, logs := newTestConsole(false)
	assert.True(t, c.ContinueProcessing())

	c.Stop()
	c.Stop()
	assert.False(t, c.ContinueProcessing())
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("stopping")))
}

func TestConsoleStopOnDone(t *testing.T) {
	c, _, _ := newTestConsole(false)
	ctx, cancel := context.WithCancel(context.Background())

	release := c.StopOnDone(ctx)
	defer release()

	cancel()
	assert.Eventually(t, func() bool { return !c.ContinueProcessing() }, time.Second, 5*time.Millisecond)
}

func TestConsoleStopOnDoneReleased(t *testing.T) {
	c, _, _ := newTestConsole(false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := c.StopOnDone(ctx)
	release()

	assert.True(t, c.ContinueProcessing())
}
