package server

import (
	"encoding/json"
	"log"
	"sync"
)

// maxPendingPayloads bounds how many payloads a stream may fall behind,
// including the queue flushed at attach. The engine calls Send under the
// lobby mutex, so the bound is what keeps a stalled client from holding
// payloads without limit.
const maxPendingPayloads = 1024

// streamConn buffers push payloads for a single client stream. Send never
// blocks: payloads append to an internal list and the stream's writer
// drains the list through take. A stream more than maxPendingPayloads
// behind starts dropping.
type streamConn struct {
	mu      sync.Mutex
	pending []any

	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newStreamConn() *streamConn {
	return &streamConn{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (c *streamConn) Send(v any) {
	c.mu.Lock()
	if len(c.pending) >= maxPendingPayloads {
		c.mu.Unlock()
		log.Printf("push stream backed up, dropping payload")
		return
	}
	c.pending = append(c.pending, v)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// take returns the buffered payloads in send order and clears the buffer.
func (c *streamConn) take() []any {
	c.mu.Lock()
	out := c.pending
	c.pending = nil
	c.mu.Unlock()
	return out
}

func (c *streamConn) close() {
	c.once.Do(func() { close(c.done) })
}

// wsWriteLoop drains a stream onto a WebSocket encoder. Network writes
// happen here, never on the engine's goroutines, so a peer that stops
// reading only stalls its own stream.
func wsWriteLoop(c *streamConn, enc *json.Encoder) {
	for {
		select {
		case <-c.done:
			return
		case <-c.notify:
			for _, v := range c.take() {
				if err := enc.Encode(v); err != nil {
					log.Printf("websocket write failed: %v", err)
					return
				}
			}
		}
	}
}
