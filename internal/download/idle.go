package download

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// ErrStalled means the server stopped sending body bytes for longer than
// the idle timeout.
var ErrStalled = errors.New("transfer stalled")

// idleTimeoutReader calls onExpire when no bytes arrive within timeout.
// Every successful read re-arms the timer.
type idleTimeoutReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
	expired atomic.Bool
}

func newIdleTimeoutReader(r io.Reader, timeout time.Duration, onExpire func()) *idleTimeoutReader {
	ir := &idleTimeoutReader{r: r, timeout: timeout}
	ir.timer = time.AfterFunc(timeout, func() {
		ir.expired.Store(true)
		onExpire()
	})
	return ir
}

func (ir *idleTimeoutReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 && !ir.expired.Load() {
		ir.timer.Reset(ir.timeout)
	}
	if err != nil && err != io.EOF && ir.expired.Load() {
		err = fmt.Errorf("%w: no data for %s: %w", ErrStalled, ir.timeout, err)
	}
	return n, err
}

// Stop releases the timer.
func (ir *idleTimeoutReader) Stop() {
	ir.timer.Stop()
}
