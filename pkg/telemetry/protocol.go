// Package telemetry is a concrete message family built on pkg/protocol.
//
// Frames carry a sync word, the message id, the payload length, a timestamp
// and a sequence id in an 18 byte header, and end with a 4 byte BLAKE2b
// checksum. Decoders accept both byte orders and detect the sender's from the
// sync word.
package telemetry

import (
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/ZentaChain/zentalk-bus/pkg/protocol"
)

const familyName = "Telemetry"

type options struct {
	order binary.ByteOrder
}

// Option configures New.
type Option func(*options)

// WithByteOrder selects the byte order frames are encoded in. Decoding
// follows the sync word regardless.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		o.order = order
	}
}

// New builds the telemetry protocol.
func New(opts ...Option) (*protocol.Protocol, error) {
	o := options{order: binary.BigEndian}
	for _, opt := range opts {
		opt(&o)
	}

	return protocol.NewBuilder(familyName).
		Framing(Framing{}).
		ByteOrder(o.order).
		Register(HeartbeatID, "Heartbeat", func() protocol.Message { return &Heartbeat{} }).
		Register(AnnounceID, "Announce", func() protocol.Message { return &Announce{} }).
		Register(EntityStateID, "EntityState", func() protocol.Message { return &EntityState{} }).
		Register(MeasurementID, "Measurement", func() protocol.Message { return &Measurement{} }).
		Register(DataChunkID, "DataChunk", func() protocol.Message { return &DataChunk{} }).
		Register(EnvelopeID, "Envelope", func() protocol.Message { return &Envelope{} }).
		Register(AbortID, "Abort", func() protocol.Message { return &Abort{} }).
		Build()
}

// Sequencer stamps outgoing messages with the current time and a per-source
// sequence id. It is safe for concurrent use.
type Sequencer struct {
	next atomic.Uint32
	now  func() time.Time
}

// NewSequencer returns a sequencer whose first id is 0.
func NewSequencer() *Sequencer {
	return &Sequencer{now: time.Now}
}

// Stamp sets the timestamp and the next sequence id on m and returns the id.
func (s *Sequencer) Stamp(m protocol.Message) (uint32, error) {
	seq := s.next.Add(1) - 1
	if err := protocol.SetSequenceID(m, seq); err != nil {
		return 0, err
	}
	now := s.now()
	if err := protocol.SetTimestamp(m, float64(now.Unix())+float64(now.Nanosecond())/1e9); err != nil {
		return 0, err
	}
	return seq, nil
}
