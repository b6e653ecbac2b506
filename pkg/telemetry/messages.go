package telemetry

import (
	"bytes"

	"github.com/ZentaChain/zentalk-bus/pkg/protocol"
)

// Message ids of the telemetry family.
const (
	HeartbeatID   uint16 = 1
	AnnounceID    uint16 = 2
	EntityStateID uint16 = 3
	MeasurementID uint16 = 4
	DataChunkID   uint16 = 5
	EnvelopeID    uint16 = 6
	AbortID       uint16 = 7
)

// stamp holds the attributes carried by the frame header. Embedding it makes
// a message Timestamped and Sequenced.
type stamp struct {
	ts  float64
	seq uint32
}

func (s *stamp) Timestamp() float64 { return s.ts }
func (s *stamp) SetTimestamp(ts float64) { s.ts = ts }
func (s *stamp) SequenceID() uint32 { return s.seq }
func (s *stamp) SetSequenceID(seq uint32) { s.seq = seq }

func (s *stamp) values(base float64) []any {
	return []any{s.ts - base, s.seq}
}

func fieldNames(names ...string) []string {
	return append([]string{"timestamp", "seq"}, names...)
}

func fieldTypes(types ...protocol.FieldType) []protocol.FieldType {
	return append([]protocol.FieldType{protocol.TypeFP64, protocol.TypeUint32}, types...)
}

// ===== HEARTBEAT =====

// Heartbeat statuses.
const (
	StatusBoot uint8 = iota
	StatusNominal
	StatusDegraded
	StatusFault
)

// Heartbeat is sent periodically by every source.
type Heartbeat struct {
	stamp
	Uptime uint32 // Seconds since start
	Status uint8  // StatusBoot .. StatusFault
	Load   uint8  // Percent
}

func (*Heartbeat) SerialID() uint16 { return HeartbeatID }
func (*Heartbeat) Name() string { return "Heartbeat" }
func (*Heartbeat) SerialSize() int { return 4 + 1 + 1 }

func (m *Heartbeat) Validate() error {
	if err := protocol.CheckMax("Heartbeat", "status", m.Status, StatusFault); err != nil {
		return err
	}
	return protocol.CheckMax("Heartbeat", "load", m.Load, 100)
}

func (m *Heartbeat) Serialize(b *protocol.Buffer) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := b.WriteUint32(m.Uptime); err != nil {
		return err
	}
	if err := b.WriteUint8(m.Status); err != nil {
		return err
	}
	return b.WriteUint8(m.Load)
}

func (m *Heartbeat) Unserialize(b *protocol.Buffer) error {
	var err error
	if m.Uptime, err = b.ReadUint32(); err != nil {
		return err
	}
	if m.Status, err = b.ReadUint8(); err != nil {
		return err
	}
	if m.Load, err = b.ReadUint8(); err != nil {
		return err
	}
	return m.Validate()
}

func (m *Heartbeat) FieldNames() []string {
	return fieldNames("uptime", "status", "load")
}

func (m *Heartbeat) FieldValues(base float64) []any {
	return append(m.values(base), m.Uptime, m.Status, m.Load)
}

func (m *Heartbeat) FieldTypes() []protocol.FieldType {
	return fieldTypes(protocol.TypeUint32, protocol.TypeUint8, protocol.TypeUint8)
}

func (m *Heartbeat) Copy() protocol.Message {
	c := *m
	return &c
}

// ===== ANNOUNCE =====

// Announce introduces a source and its position.
type Announce struct {
	stamp
	Source    string  // Source name (ISO-8859-1)
	Latitude  float64 // Degrees, -90 .. 90
	Longitude float64 // Degrees, -180 .. 180
	Height    float32 // Meters
}

func (*Announce) SerialID() uint16 { return AnnounceID }
func (*Announce) Name() string { return "Announce" }

func (m *Announce) SerialSize() int {
	return 2 + protocol.LegacyTextSize(m.Source) + 8 + 8 + 4
}

func (m *Announce) Validate() error {
	if err := protocol.CheckLength("Announce", "source", protocol.LegacyTextSize(m.Source)); err != nil {
		return err
	}
	if err := protocol.CheckRange("Announce", "lat", m.Latitude, -90, 90); err != nil {
		return err
	}
	return protocol.CheckRange("Announce", "lon", m.Longitude, -180, 180)
}

func (m *Announce) Serialize(b *protocol.Buffer) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := b.WritePlainText(m.Source); err != nil {
		return err
	}
	if err := b.WriteFP64(m.Latitude); err != nil {
		return err
	}
	if err := b.WriteFP64(m.Longitude); err != nil {
		return err
	}
	return b.WriteFP32(m.Height)
}

func (m *Announce) Unserialize(b *protocol.Buffer) error {
	var err error
	if m.Source, err = b.ReadPlainText(); err != nil {
		return err
	}
	if m.Latitude, err = b.ReadFP64(); err != nil {
		return err
	}
	if m.Longitude, err = b.ReadFP64(); err != nil {
		return err
	}
	if m.Height, err = b.ReadFP32(); err != nil {
		return err
	}
	return m.Validate()
}

func (m *Announce) FieldNames() []string {
	return fieldNames("source", "lat", "lon", "height")
}

func (m *Announce) FieldValues(base float64) []any {
	return append(m.values(base), m.Source, m.Latitude, m.Longitude, m.Height)
}

func (m *Announce) FieldTypes() []protocol.FieldType {
	return fieldTypes(protocol.TypePlainText, protocol.TypeFP64, protocol.TypeFP64, protocol.TypeFP32)
}

func (m *Announce) Copy() protocol.Message {
	c := *m
	return &c
}

// ===== ENTITY STATE =====

// Entity states.
const (
	StateUnknown uint8 = iota
	StateIdle
	StateActive
	StateStopping
	StateFailed
)

// EntityState reports a state change of one entity.
type EntityState struct {
	stamp
	Entity uint16
	State  uint8 // StateUnknown .. StateFailed
	Reason string
}

func (*EntityState) SerialID() uint16 { return EntityStateID }
func (*EntityState) Name() string { return "EntityState" }

func (m *EntityState) SerialSize() int {
	return 2 + 1 + 2 + protocol.LegacyTextSize(m.Reason)
}

func (m *EntityState) Validate() error {
	if err := protocol.CheckMax("EntityState", "state", m.State, StateFailed); err != nil {
		return err
	}
	return protocol.CheckLength("EntityState", "reason", protocol.LegacyTextSize(m.Reason))
}

func (m *EntityState) Serialize(b *protocol.Buffer) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := b.WriteUint16(m.Entity); err != nil {
		return err
	}
	if err := b.WriteUint8(m.State); err != nil {
		return err
	}
	return b.WritePlainText(m.Reason)
}

func (m *EntityState) Unserialize(b *protocol.Buffer) error {
	var err error
	if m.Entity, err = b.ReadUint16(); err != nil {
		return err
	}
	if m.State, err = b.ReadUint8(); err != nil {
		return err
	}
	if m.Reason, err = b.ReadPlainText(); err != nil {
		return err
	}
	return m.Validate()
}

func (m *EntityState) FieldNames() []string {
	return fieldNames("entity", "state", "reason")
}

func (m *EntityState) FieldValues(base float64) []any {
	return append(m.values(base), m.Entity, m.State, m.Reason)
}

func (m *EntityState) FieldTypes() []protocol.FieldType {
	return fieldTypes(protocol.TypeUint16, protocol.TypeUint8, protocol.TypePlainText)
}

func (m *EntityState) Copy() protocol.Message {
	c := *m
	return &c
}

// ===== MEASUREMENT =====

// Measurement carries one sample of every numeric field type.
type Measurement struct {
	stamp
	I8  int8
	U8  uint8
	I16 int16
	U16 uint16
	I32 int32
	U32 uint32
	I64 int64
	U64 int64 // uint64 on the wire, decoded signed
	F32 float32
	F64 float64
}

func (*Measurement) SerialID() uint16 { return MeasurementID }
func (*Measurement) Name() string { return "Measurement" }
func (*Measurement) SerialSize() int { return 1 + 1 + 2 + 2 + 4 + 4 + 8 + 8 + 4 + 8 }

// Validate rejects a negative U64, which cannot have come from an unsigned
// source value.
func (m *Measurement) Validate() error {
	return protocol.CheckMin("Measurement", "u64", m.U64, 0)
}

func (m *Measurement) Serialize(b *protocol.Buffer) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := b.WriteInt8(m.I8); err != nil {
		return err
	}
	if err := b.WriteUint8(m.U8); err != nil {
		return err
	}
	if err := b.WriteInt16(m.I16); err != nil {
		return err
	}
	if err := b.WriteUint16(m.U16); err != nil {
		return err
	}
	if err := b.WriteInt32(m.I32); err != nil {
		return err
	}
	if err := b.WriteUint32(m.U32); err != nil {
		return err
	}
	if err := b.WriteInt64(m.I64); err != nil {
		return err
	}
	if err := b.WriteUint64(m.U64); err != nil {
		return err
	}
	if err := b.WriteFP32(m.F32); err != nil {
		return err
	}
	return b.WriteFP64(m.F64)
}

func (m *Measurement) Unserialize(b *protocol.Buffer) error {
	var err error
	if m.I8, err = b.ReadInt8(); err != nil {
		return err
	}
	if m.U8, err = b.ReadUint8(); err != nil {
		return err
	}
	if m.I16, err = b.ReadInt16(); err != nil {
		return err
	}
	if m.U16, err = b.ReadUint16(); err != nil {
		return err
	}
	if m.I32, err = b.ReadInt32(); err != nil {
		return err
	}
	if m.U32, err = b.ReadUint32(); err != nil {
		return err
	}
	if m.I64, err = b.ReadInt64(); err != nil {
		return err
	}
	if m.U64, err = b.ReadUint64(); err != nil {
		return err
	}
	if m.F32, err = b.ReadFP32(); err != nil {
		return err
	}
	if m.F64, err = b.ReadFP64(); err != nil {
		return err
	}
	return m.Validate()
}

func (m *Measurement) FieldNames() []string {
	return fieldNames("i8", "u8", "i16", "u16", "i32", "u32", "i64", "u64", "f32", "f64")
}

func (m *Measurement) FieldValues(base float64) []any {
	return append(m.values(base),
		m.I8, m.U8, m.I16, m.U16, m.I32, m.U32, m.I64, m.U64, m.F32, m.F64)
}

func (m *Measurement) FieldTypes() []protocol.FieldType {
	return fieldTypes(
		protocol.TypeInt8, protocol.TypeUint8, protocol.TypeInt16, protocol.TypeUint16,
		protocol.TypeInt32, protocol.TypeUint32, protocol.TypeInt64, protocol.TypeUint64,
		protocol.TypeFP32, protocol.TypeFP64)
}

func (m *Measurement) Copy() protocol.Message {
	c := *m
	return &c
}

// ===== DATA CHUNK =====

// DataChunk carries one slice of an opaque blob.
type DataChunk struct {
	stamp
	Offset uint32 // Byte offset of Data within the blob
	Data   []byte
}

func (*DataChunk) SerialID() uint16 { return DataChunkID }
func (*DataChunk) Name() string { return "DataChunk" }

func (m *DataChunk) SerialSize() int { return 4 + 2 + len(m.Data) }

func (m *DataChunk) Validate() error {
	return protocol.CheckLength("DataChunk", "data", len(m.Data))
}

func (m *DataChunk) Serialize(b *protocol.Buffer) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := b.WriteUint32(m.Offset); err != nil {
		return err
	}
	return b.WriteRawData(m.Data)
}

func (m *DataChunk) Unserialize(b *protocol.Buffer) error {
	var err error
	if m.Offset, err = b.ReadUint32(); err != nil {
		return err
	}
	if m.Data, err = b.ReadRawData(); err != nil {
		return err
	}
	return m.Validate()
}

func (m *DataChunk) FieldNames() []string {
	return fieldNames("offset", "data")
}

func (m *DataChunk) FieldValues(base float64) []any {
	return append(m.values(base), m.Offset, m.Data)
}

func (m *DataChunk) FieldTypes() []protocol.FieldType {
	return fieldTypes(protocol.TypeUint32, protocol.TypeRawData)
}

func (m *DataChunk) Copy() protocol.Message {
	c := *m
	c.Data = bytes.Clone(m.Data)
	return &c
}

// ===== ENVELOPE =====

// Envelope forwards another telemetry message. The nested message inherits
// the envelope's timestamp and sequence id when decoded.
type Envelope struct {
	stamp
	Origin  uint16
	TTL     uint8 // Remaining hops, at least 1
	Payload protocol.Message
}

func (*Envelope) SerialID() uint16 { return EnvelopeID }
func (*Envelope) Name() string { return "Envelope" }

func (m *Envelope) SerialSize() int { return 2 + 1 + protocol.InlineSize(m.Payload) }

func (m *Envelope) Validate() error {
	if err := protocol.CheckMin("Envelope", "ttl", m.TTL, 1); err != nil {
		return err
	}
	if m.Payload != nil {
		return m.Payload.Validate()
	}
	return nil
}

func (m *Envelope) Serialize(b *protocol.Buffer) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := b.WriteUint16(m.Origin); err != nil {
		return err
	}
	if err := b.WriteUint8(m.TTL); err != nil {
		return err
	}
	return b.WriteMessage(m.Payload)
}

func (m *Envelope) Unserialize(b *protocol.Buffer) error {
	var err error
	if m.Origin, err = b.ReadUint16(); err != nil {
		return err
	}
	if m.TTL, err = b.ReadUint8(); err != nil {
		return err
	}
	if m.Payload, err = b.ReadMessage(m); err != nil {
		return err
	}
	return protocol.CheckMin("Envelope", "ttl", m.TTL, 1)
}

func (m *Envelope) FieldNames() []string {
	return fieldNames("origin", "ttl", "payload")
}

func (m *Envelope) FieldValues(base float64) []any {
	return append(m.values(base), m.Origin, m.TTL, m.Payload)
}

func (m *Envelope) FieldTypes() []protocol.FieldType {
	return fieldTypes(protocol.TypeUint16, protocol.TypeUint8, protocol.TypeMessage)
}

func (m *Envelope) Copy() protocol.Message {
	c := *m
	if m.Payload != nil {
		c.Payload = m.Payload.Copy()
	}
	return &c
}

// ===== ABORT =====

// Abort tells every receiver to stop the current run.
type Abort struct {
	stamp
	Code   uint16
	Reason string
}

func (*Abort) SerialID() uint16 { return AbortID }
func (*Abort) Name() string { return "Abort" }

func (m *Abort) SerialSize() int { return 2 + 2 + protocol.LegacyTextSize(m.Reason) }

func (m *Abort) Validate() error {
	return protocol.CheckLength("Abort", "reason", protocol.LegacyTextSize(m.Reason))
}

func (m *Abort) Serialize(b *protocol.Buffer) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := b.WriteUint16(m.Code); err != nil {
		return err
	}
	return b.WritePlainText(m.Reason)
}

func (m *Abort) Unserialize(b *protocol.Buffer) error {
	var err error
	if m.Code, err = b.ReadUint16(); err != nil {
		return err
	}
	if m.Reason, err = b.ReadPlainText(); err != nil {
		return err
	}
	return m.Validate()
}

func (m *Abort) FieldNames() []string {
	return fieldNames("code", "reason")
}

func (m *Abort) FieldValues(base float64) []any {
	return append(m.values(base), m.Code, m.Reason)
}

func (m *Abort) FieldTypes() []protocol.FieldType {
	return fieldTypes(protocol.TypeUint16, protocol.TypePlainText)
}

func (m *Abort) Copy() protocol.Message {
	c := *m
	return &c
}
