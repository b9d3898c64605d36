package status

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// Status receives trace output and progress from a synchronization run
type Status interface {
	// Message reports rendered SQL
	Message(text string)
	// LogMessage reports a recoverable failure
	LogMessage(text string)
	Progress(total, current int)
	// ContinueProcessing is checked before each item; false skips the rest of the phase
	ContinueProcessing() bool
	// FailOnError aborts the batch on the first failed item when true
	FailOnError() bool
}

// Console writes SQL trace to out and everything else to the logger
type Console struct {
	out         io.Writer
	logger      *slog.Logger
	failOnError bool
	stopped     atomic.Bool
}

// NewConsole creates a console status. A nil logger uses slog.Default().
func NewConsole(out io.Writer, logger *slog.Logger, failOnError bool) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{out: out, logger: logger, failOnError: failOnError}
}

func (c *Console) Message(text string) {
	fmt.Fprintln(c.out, text)
}

func (c *Console) LogMessage(text string) {
	c.logger.Warn(text)
}

func (c *Console) Progress(total, current int) {
	c.logger.Debug("progress", "current", current, "total", total)
}

func (c *Console) ContinueProcessing() bool {
	return !c.stopped.Load()
}

func (c *Console) FailOnError() bool {
	return c.failOnError
}

// Stop makes ContinueProcessing report false
func (c *Console) Stop() {
	if c.stopped.CompareAndSwap(false, true) {
		c.logger.Info("stopping after the current item")
	}
}

// StopOnDone calls Stop once ctx is done. The returned function releases the watcher.
func (c *Console) StopOnDone(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.Stop()
		case <-done:
		}
	}()
	return func() { close(done) }
}
