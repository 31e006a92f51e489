// Package link is the host side of the flight controller's serial
// console: it streams boot diagnostic lines, recognises trim echo
// lines, and sends the single-byte trim commands.
package link

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate matches the controller's console.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default line/trim channel buffer.
	DefaultBufferSize = 100
)

// Trim command bytes, by rotor index.
var (
	TrimUp   = [4]byte{'q', 'w', 'e', 'r'}
	TrimDown = [4]byte{'a', 's', 'd', 'f'}
)

// Client is a connection to the flight controller console.
type Client struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	lines     chan string
	trims     chan [4]uint8
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a Client for the named port. Zero baudRate and bufSize
// select the defaults.
func New(port string, baudRate int, bufSize int) *Client {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		lines:    make(chan string, bufSize),
		trims:    make(chan [4]uint8, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns the available serial port names.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Connect opens the port and starts streaming console lines.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return fmt.Errorf("already connected")
	}

	port, err := serial.Open(c.port, &serial.Mode{BaudRate: c.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", c.port, err)
	}

	c.conn = port
	c.connected = true

	go c.readLines()

	return nil
}

// Close disconnects and closes the line and trim channels.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	c.cancel()

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		c.conn = nil
	}

	c.connected = false

	close(c.lines)
	close(c.trims)

	return nil
}

// Lines returns the channel of console lines, trim echoes included.
func (c *Client) Lines() <-chan string {
	return c.lines
}

// Trims returns the channel of parsed trim echoes.
func (c *Client) Trims() <-chan [4]uint8 {
	return c.trims
}

// Send writes one command byte to the controller.
func (c *Client) Send(b byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	if _, err := c.conn.Write([]byte{b}); err != nil {
		return fmt.Errorf("failed to send command %q: %w", b, err)
	}

	return nil
}

// IsConnected returns whether the client is currently connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// readLines reads console lines, forwards each on the lines channel
// and parsed trim echoes on the trims channel.
func (c *Client) readLines() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readLines: %v", r)
		}
	}()

	scanner := bufio.NewScanner(c.conn)
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			select {
			case c.lines <- line:
			case <-c.ctx.Done():
				return
			default:
				log.Printf("Lines channel full, dropping line")
			}

			trims, ok := parseTrims(line)
			if !ok {
				continue
			}
			select {
			case c.trims <- trims:
			case <-c.ctx.Done():
				return
			default:
				log.Printf("Trims channel full, dropping echo")
			}
		}
	}
}

// parseTrims recognises a trim echo: exactly four decimal fields, each
// a byte. Diagnostic lines simply fail to parse.
func parseTrims(line string) ([4]uint8, bool) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return [4]uint8{}, false
	}

	var trims [4]uint8
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return [4]uint8{}, false
		}
		trims[i] = uint8(v)
	}

	return trims, true
}
