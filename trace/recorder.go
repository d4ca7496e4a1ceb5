package trace

import (
	"errors"

	"github.com/nstehr/tidewatch/tidewatch-core/sim"
)

// Sink is anything a Recorder writes envelopes to.
type Sink interface {
	Write(env Envelope) error
}

// sinkFunc adapts the observer's Broadcast.
type sinkFunc func(Envelope) error

func (f sinkFunc) Write(env Envelope) error { return f(env) }

// ObserverSink lets an Observer receive recorded envelopes.
func ObserverSink(o *Observer) Sink { return sinkFunc(o.Broadcast) }

// Recorder writes a match to every sink it was given, numbering envelopes
// so readers can tell a dropped frame from the end of a match.
type Recorder struct {
	sinks []Sink
	seq   uint64
}

func NewRecorder(sinks ...Sink) *Recorder {
	var keep []Sink
	for _, s := range sinks {
		if s != nil {
			keep = append(keep, s)
		}
	}
	return &Recorder{sinks: keep}
}

func (r *Recorder) send(msgType string, data any) error {
	if len(r.sinks) == 0 {
		return nil
	}
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	r.seq++
	env.Seq = r.seq
	var errs []error
	for _, s := range r.sinks {
		if err := s.Write(env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Header records the arena; call it once before the first round.
func (r *Recorder) Header(h Header) error { return r.send(TypeHeader, h) }

// Round is shaped to be assigned to sim.Match.Record.
func (r *Recorder) Round(rec sim.RoundRecord) error { return r.send(TypeRound, rec) }

func (r *Recorder) Result(res sim.Result) error { return r.send(TypeResult, res) }
