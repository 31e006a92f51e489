package airsim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/openaero/quadx/pkg/hal"
)

// Console is the serial transport over a plain reader/writer pair:
// stdout/stdin for an interactive simulator, in-memory buffers for a
// loopback. Writes are serialised, so the control loop and the trim
// handler can narrate concurrently.
type Console struct {
	hal.TextWriter

	r io.Reader

	mu sync.Mutex
	w  io.Writer
	fn func(b byte)
}

var _ hal.Serial = (*Console)(nil)

// NewConsole returns a Console writing to w and pumping bytes from r.
func NewConsole(w io.Writer, r io.Reader) *Console {
	c := &Console{r: r, w: w}
	c.TextWriter = hal.TextWriter{W: c}
	return c
}

// Write serialises the underlying writes; Console is its own
// TextWriter sink.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.Write(p)
}

func (c *Console) SetInputHandler(fn func(b byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fn = fn
}

// Pump delivers received bytes to the input handler until the reader
// drains or ctx is cancelled. Run it on its own goroutine for live
// transports; a drained reader ends the pump cleanly.
func (c *Console) Pump(ctx context.Context) error {
	buf := make([]byte, 1)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := c.r.Read(buf)
		if n > 0 {
			c.mu.Lock()
			fn := c.fn
			c.mu.Unlock()
			if fn != nil {
				fn(buf[0])
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read console input: %w", err)
		}
	}
}
