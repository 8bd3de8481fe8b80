package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"

	"github.com/pkg/errors"
)

var errClosed = errors.New("mpv ipc closed")

// message is any line mpv writes on the IPC socket: a command reply
// (request_id set) or an event (event set).
type message struct {
	RequestID int64           `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`

	Event     string `json:"event"`
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
	FileError string `json:"file_error"`
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcClient multiplexes JSON IPC commands and events over one connection.
type ipcClient struct {
	conn    net.Conn
	onEvent func(message)

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan message
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

func newIPCClient(conn net.Conn, onEvent func(message)) *ipcClient {
	c := &ipcClient{
		conn:    conn,
		onEvent: onEvent,
		pending: make(map[int64]chan message),
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.readLoop()
	}()
	return c
}

func (c *ipcClient) readLoop() {
	defer c.shutdown()

	r := bufio.NewReader(c.conn)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			c.dispatch(line)
		}
		if err != nil {
			return
		}
	}
}

func (c *ipcClient) dispatch(line []byte) {
	var m message
	if err := json.Unmarshal(line, &m); err != nil {
		return
	}
	if m.Event != "" {
		if c.onEvent != nil {
			c.onEvent(m)
		}
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[m.RequestID]
	delete(c.pending, m.RequestID)
	c.mu.Unlock()
	if ok {
		ch <- m
	}
}

func (c *ipcClient) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

// command sends args and waits for the matching reply.
func (c *ipcClient) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errClosed
	}
	c.nextID++
	id := c.nextID
	reply := make(chan message, 1)
	c.pending[id] = reply
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		return nil, errors.Wrap(err, "encode command")
	}
	payload = append(payload, '\n')

	c.writeMu.Lock()
	_, err = c.conn.Write(payload)
	c.writeMu.Unlock()
	if err != nil {
		return nil, errors.Wrapf(err, "write %v", args[0])
	}

	select {
	case m := <-reply:
		if m.Error != "" && m.Error != "success" {
			return nil, errors.Errorf("mpv %v: %s", args[0], m.Error)
		}
		return m.Data, nil
	case <-c.done:
		return nil, errClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// close closes the connection and waits for the reader to exit.
func (c *ipcClient) close() error {
	err := c.conn.Close()
	c.wg.Wait()
	return err
}
