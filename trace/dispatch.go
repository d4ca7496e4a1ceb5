package trace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Handler processes one envelope read back from a trace.
type Handler func(env Envelope) error

// Dispatcher routes envelopes to handlers by type.
type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher(handlers map[string]Handler) *Dispatcher {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Dispatcher{handlers: handlers}
}

func (d *Dispatcher) RegisterHandler(msgType string, handler Handler) {
	d.handlers[msgType] = handler
}

// Run reads r until the end of the stream. Recorded envelopes must follow
// each other without gaps. Envelopes without a handler are skipped; the
// first handler error stops the run.
func (d *Dispatcher) Run(r io.Reader) (int, error) {
	n := 0
	var last uint64
	for {
		env, err := ReadEnvelope(r)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
		if env.Seq != 0 {
			if last != 0 && env.Seq != last+1 {
				return n, fmt.Errorf("sequence gap: envelope %d follows %d", env.Seq, last)
			}
			last = env.Seq
		}

		handler, ok := d.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type)
			continue
		}
		if err := handler(env); err != nil {
			return n, fmt.Errorf("handle %s #%d: %w", env.Type, n, err)
		}
	}
}
