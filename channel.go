// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hounds

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// sessionEndTimeout bounds how long Close and error paths wait for the
// browser to shut down.
const sessionEndTimeout = 10 * time.Second

// Hunt is the pull-based delivery channel of one crawl.
//
// Nothing happens until the first call to Next or Drain, which launches the
// browser and starts crawling. From then on the crawl runs to completion on
// its own; events are buffered until pulled. A Hunt terminates exactly once,
// either normally (Next returns io.EOF) or with a single terminal error.
type Hunt struct {
	cfg    *Config
	engine *engine

	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	closeOnce sync.Once
	endOnce   sync.Once

	mu       sync.Mutex
	buf      []Event
	finished bool
	err      error
	session  BrowserSession

	notify  chan struct{}
	done    chan struct{}
	state   atomic.Int32
	visited atomic.Int64
}

// Release creates a hunt for cfg. The crawl starts on the first pull.
// An invalid cfg is reported as a *ConfigurationError by that first pull.
func Release(cfg *Config) *Hunt {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hunt{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	h.engine = newEngine(h, cfg)
	h.setState(StateAwaitingFirstDemand)
	return h
}

// Next returns the next event. It blocks until an event is available, the
// hunt ends (io.EOF), the hunt fails (the terminal error) or ctx is done.
// Events buffered before termination are delivered first.
func (h *Hunt) Next(ctx context.Context) (Event, error) {
	h.start()
	for {
		h.mu.Lock()
		if len(h.buf) > 0 {
			ev := h.buf[0]
			h.buf[0] = nil
			h.buf = h.buf[1:]
			h.mu.Unlock()
			return ev, nil
		}
		if h.finished {
			err := h.err
			h.mu.Unlock()
			if err == nil {
				return nil, io.EOF
			}
			return nil, err
		}
		h.mu.Unlock()

		select {
		case <-h.notify:
		case <-h.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Drain calls fn for every event until the hunt ends. It returns nil when
// the hunt ended normally, the terminal error when it failed, or the first
// error returned by fn.
func (h *Hunt) Drain(ctx context.Context, fn func(Event) error) error {
	for {
		ev, err := h.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}

// Close ends the hunt from outside: it stops the crawl at its next
// suspension point, ends the browser session and closes the hunt normally.
// Close is how keep-alive hunts are finished. It is safe to call repeatedly.
func (h *Hunt) Close() error {
	var err error
	h.closeOnce.Do(func() {
		h.cancel()
		err = h.endSession()
		if h.State() != StateErrored {
			h.setState(StateEnded)
		}
		h.finish(nil)
	})
	return err
}

// Done is closed when the hunt has terminated.
func (h *Hunt) Done() <-chan struct{} {
	return h.done
}

// Err returns the terminal error, or nil while running or after a normal end.
func (h *Hunt) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// State returns the engine's current state.
func (h *Hunt) State() State {
	return State(h.state.Load())
}

// Visited returns the number of pages visited so far.
func (h *Hunt) Visited() int {
	return int(h.visited.Load())
}

func (h *Hunt) start() {
	h.startOnce.Do(func() {
		select {
		case <-h.done:
			return
		default:
		}
		go h.engine.run(h.ctx)
	})
}

// push buffers ev for the consumer. Events arriving after termination are dropped.
func (h *Hunt) push(ev Event) {
	h.mu.Lock()
	if h.finished {
		h.mu.Unlock()
		return
	}
	h.buf = append(h.buf, ev)
	h.mu.Unlock()

	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// finish moves the hunt to its terminal state. Only the first call counts.
func (h *Hunt) finish(err error) {
	h.mu.Lock()
	if h.finished {
		h.mu.Unlock()
		return
	}
	h.finished = true
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

func (h *Hunt) setSession(s BrowserSession) {
	h.mu.Lock()
	h.session = s
	h.mu.Unlock()
}

// endSession ends the browser session once, whoever gets there first.
func (h *Hunt) endSession() error {
	h.mu.Lock()
	s := h.session
	h.mu.Unlock()
	if s == nil {
		return nil
	}
	var err error
	h.endOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sessionEndTimeout)
		defer cancel()
		err = s.End(ctx)
	})
	return err
}

func (h *Hunt) setState(s State) {
	h.state.Store(int32(s))
}
