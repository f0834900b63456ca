package orchestrator

import (
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/plugforge/plugforge/pkg/logger"
)

// taskGroup wraps errgroup.Group with panic recovery so a misbehaving
// background archive task cannot crash the run.
type taskGroup struct {
	group  *errgroup.Group
	logger logger.Logger
}

func newTaskGroup(log logger.Logger) *taskGroup {
	return &taskGroup{
		group:  &errgroup.Group{},
		logger: log,
	}
}

// Go runs fn in a new goroutine with panic recovery. A panic is
// converted to an error and logged with its stack trace.
func (tg *taskGroup) Go(fn func() error) {
	tg.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				tg.logger.Error("Background task panic recovered",
					logger.WithField("panic", r),
					logger.WithField("stack_trace", string(debug.Stack())))
				err = fmt.Errorf("background task panic: %v", r)
			}
		}()

		return fn()
	})
}

// Wait blocks until all tasks have completed and returns the first
// error encountered.
func (tg *taskGroup) Wait() error {
	return tg.group.Wait()
}
