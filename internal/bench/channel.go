package bench

import (
	"errors"
	"sync"

	nativeexport "github.com/analogrelay/go-native-export"
)

// ErrClosed is returned by ChannelCalculator.Calculate after Close.
var ErrClosed = errors.New("channel calculator is closed")

type request struct {
	a, b int32
	resp chan int32
}

// ChannelCalculator forwards every call to a single worker goroutine and
// waits for the reply, the cost of a call-through-channels bridge.
type ChannelCalculator struct {
	reqCh chan request
	done  chan struct{}
	pool  sync.Pool
	once  sync.Once
}

// NewChannelCalculator starts the worker goroutine. Close stops it.
func NewChannelCalculator() *ChannelCalculator {
	c := &ChannelCalculator{
		reqCh: make(chan request),
		done:  make(chan struct{}),
	}
	c.pool.New = func() any { return make(chan int32, 1) }
	go channelWorker(c.reqCh, c.done)
	return c
}

func channelWorker(reqCh <-chan request, done <-chan struct{}) {
	for {
		select {
		case req := <-reqCh:
			req.resp <- nativeexport.Calculate(req.a, req.b)
		case <-done:
			return
		}
	}
}

// Calculate sends the operands to the worker.
func (c *ChannelCalculator) Calculate(a, b int32) (int32, error) {
	select {
	case <-c.done:
		return 0, ErrClosed
	default:
	}
	resp := c.pool.Get().(chan int32)
	select {
	case c.reqCh <- request{a: a, b: b, resp: resp}:
	case <-c.done:
		c.pool.Put(resp)
		return 0, ErrClosed
	}
	// resp is buffered, so an accepted request is always answered.
	v := <-resp
	c.pool.Put(resp)
	return v, nil
}

// Close stops the worker. Calls made afterwards return ErrClosed.
func (c *ChannelCalculator) Close() {
	c.once.Do(func() { close(c.done) })
}
