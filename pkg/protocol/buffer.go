package protocol

import (
	"encoding/binary"
	"math"
)

const bufferTypeName = "Buffer"

// Resolver materializes inline messages found while decoding.
type Resolver interface {
	NewMessage(id uint16) (Message, error)
	CopyAttributes(src, dst Message)
}

// Buffer is a byte cursor with typed reads and writes.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	data     []byte
	pos      int
	order    binary.ByteOrder
	resolver Resolver
}

// NewBuffer allocates a zeroed buffer of the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{
		data:  make([]byte, capacity),
		order: binary.BigEndian,
	}
}

// WrapBuffer wraps data without copying. The capacity is len(data).
func WrapBuffer(data []byte) *Buffer {
	return &Buffer{
		data:  data,
		order: binary.BigEndian,
	}
}

// Bytes returns the whole backing array.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Order returns the byte order applied to multi-byte fields.
func (b *Buffer) Order() binary.ByteOrder {
	return b.order
}

// SetOrder sets the byte order applied to multi-byte fields.
func (b *Buffer) SetOrder(order binary.ByteOrder) {
	if order == nil {
		order = binary.BigEndian
	}
	b.order = order
}

// Resolver returns the resolver used for inline messages.
func (b *Buffer) Resolver() Resolver {
	return b.resolver
}

// SetResolver attaches the resolver used by ReadMessage.
func (b *Buffer) SetResolver(r Resolver) {
	b.resolver = r
}

// Capacity returns the size of the backing array.
func (b *Buffer) Capacity() int {
	return len(b.data)
}

// Position returns the cursor.
func (b *Buffer) Position() int {
	return b.pos
}

// SetPosition moves the cursor to an absolute offset.
func (b *Buffer) SetPosition(pos int) error {
	if pos < 0 {
		return NewInvalidMessage(bufferTypeName, "position", KindMinimum, pos, 0)
	}
	if pos > len(b.data) {
		return NewInvalidMessage(bufferTypeName, "position", KindMaximum, pos, len(b.data))
	}
	b.pos = pos
	return nil
}

// Advance moves the cursor by n bytes; n may be negative.
func (b *Buffer) Advance(n int) error {
	return b.SetPosition(b.pos + n)
}

// Rewind moves the cursor back to the start.
func (b *Buffer) Rewind() {
	b.pos = 0
}

// Available returns the number of bytes between the cursor and the end.
func (b *Buffer) Available() int {
	return len(b.data) - b.pos
}

// Resize grows the backing array to at least capacity bytes. Contents, cursor
// and byte order are preserved. It never shrinks.
func (b *Buffer) Resize(capacity int) {
	if capacity <= len(b.data) {
		return
	}
	grown := make([]byte, capacity)
	copy(grown, b.data)
	b.data = grown
}

func (b *Buffer) need(field string, n int) error {
	if avail := b.Available(); avail < n {
		return NewInvalidMessage(bufferTypeName, field, KindAvailableSize, avail, n)
	}
	return nil
}

func (b *Buffer) take(field string, n int) ([]byte, error) {
	if err := b.need(field, n); err != nil {
		return nil, err
	}
	s := b.data[b.pos : b.pos+n]
	b.pos += n
	return s, nil
}

// ===== INTEGERS =====

// ReadInt8 reads a signed byte.
func (b *Buffer) ReadInt8() (int8, error) {
	s, err := b.take("int8", 1)
	if err != nil {
		return 0, err
	}
	return int8(s[0]), nil
}

// WriteInt8 writes a signed byte.
func (b *Buffer) WriteInt8(v int8) error {
	s, err := b.take("int8", 1)
	if err != nil {
		return err
	}
	s[0] = byte(v)
	return nil
}

// ReadUint8 reads an unsigned byte (0-255).
func (b *Buffer) ReadUint8() (uint8, error) {
	s, err := b.take("uint8", 1)
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

// WriteUint8 writes an unsigned byte.
func (b *Buffer) WriteUint8(v uint8) error {
	s, err := b.take("uint8", 1)
	if err != nil {
		return err
	}
	s[0] = v
	return nil
}

func (b *Buffer) ReadInt16() (int16, error) {
	s, err := b.take("int16", 2)
	if err != nil {
		return 0, err
	}
	return int16(b.order.Uint16(s)), nil
}

func (b *Buffer) WriteInt16(v int16) error {
	s, err := b.take("int16", 2)
	if err != nil {
		return err
	}
	b.order.PutUint16(s, uint16(v))
	return nil
}

func (b *Buffer) ReadUint16() (uint16, error) {
	s, err := b.take("uint16", 2)
	if err != nil {
		return 0, err
	}
	return b.order.Uint16(s), nil
}

func (b *Buffer) WriteUint16(v uint16) error {
	s, err := b.take("uint16", 2)
	if err != nil {
		return err
	}
	b.order.PutUint16(s, v)
	return nil
}

func (b *Buffer) ReadInt32() (int32, error) {
	s, err := b.take("int32", 4)
	if err != nil {
		return 0, err
	}
	return int32(b.order.Uint32(s)), nil
}

func (b *Buffer) WriteInt32(v int32) error {
	s, err := b.take("int32", 4)
	if err != nil {
		return err
	}
	b.order.PutUint32(s, uint32(v))
	return nil
}

// ReadUint32 reads an unsigned 32-bit integer (0-4294967295).
func (b *Buffer) ReadUint32() (uint32, error) {
	s, err := b.take("uint32", 4)
	if err != nil {
		return 0, err
	}
	return b.order.Uint32(s), nil
}

func (b *Buffer) WriteUint32(v uint32) error {
	s, err := b.take("uint32", 4)
	if err != nil {
		return err
	}
	b.order.PutUint32(s, v)
	return nil
}

func (b *Buffer) ReadInt64() (int64, error) {
	s, err := b.take("int64", 8)
	if err != nil {
		return 0, err
	}
	return int64(b.order.Uint64(s)), nil
}

func (b *Buffer) WriteInt64(v int64) error {
	s, err := b.take("int64", 8)
	if err != nil {
		return err
	}
	b.order.PutUint64(s, uint64(v))
	return nil
}

// ReadUint64 reads a uint64_t field. The value is returned as a signed int64,
// so patterns above math.MaxInt64 come back negative. Existing consumers
// depend on this.
func (b *Buffer) ReadUint64() (int64, error) {
	s, err := b.take("uint64", 8)
	if err != nil {
		return 0, err
	}
	return int64(b.order.Uint64(s)), nil
}

// WriteUint64 writes a uint64_t field from its signed representation.
func (b *Buffer) WriteUint64(v int64) error {
	s, err := b.take("uint64", 8)
	if err != nil {
		return err
	}
	b.order.PutUint64(s, uint64(v))
	return nil
}

// ===== FLOATS =====

func (b *Buffer) ReadFP32() (float32, error) {
	s, err := b.take("fp32", 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(b.order.Uint32(s)), nil
}

func (b *Buffer) WriteFP32(v float32) error {
	s, err := b.take("fp32", 4)
	if err != nil {
		return err
	}
	b.order.PutUint32(s, math.Float32bits(v))
	return nil
}

func (b *Buffer) ReadFP64() (float64, error) {
	s, err := b.take("fp64", 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(b.order.Uint64(s)), nil
}

func (b *Buffer) WriteFP64(v float64) error {
	s, err := b.take("fp64", 8)
	if err != nil {
		return err
	}
	b.order.PutUint64(s, math.Float64bits(v))
	return nil
}

// ===== VARIABLE LENGTH =====

// ReadRawData reads a uint16 length followed by that many bytes. A zero
// length returns nil. The result does not alias the buffer.
func (b *Buffer) ReadRawData() ([]byte, error) {
	n, err := b.ReadUint16()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	s, err := b.take("rawdata", int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, s)
	return out, nil
}

// WriteRawData writes a uint16 length followed by data.
func (b *Buffer) WriteRawData(data []byte) error {
	if err := CheckLength(bufferTypeName, "rawdata", len(data)); err != nil {
		return err
	}
	if err := b.need("rawdata", 2+len(data)); err != nil {
		return err
	}
	if err := b.WriteUint16(uint16(len(data))); err != nil {
		return err
	}
	s, err := b.take("rawdata", len(data))
	if err != nil {
		return err
	}
	copy(s, data)
	return nil
}

// ReadPlainText reads a uint16 length followed by single-byte text. Bytes
// after the first NUL inside the window are dropped.
func (b *Buffer) ReadPlainText() (string, error) {
	n, err := b.ReadUint16()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	s, err := b.take("plaintext", int(n))
	if err != nil {
		return "", err
	}
	return DecodeLegacyText(s), nil
}

// WritePlainText writes s with the legacy single-byte text codec.
func (b *Buffer) WritePlainText(s string) error {
	enc := EncodeLegacyText(s)
	if err := CheckLength(bufferTypeName, "plaintext", len(enc)); err != nil {
		return err
	}
	if err := b.need("plaintext", 2+len(enc)); err != nil {
		return err
	}
	if err := b.WriteUint16(uint16(len(enc))); err != nil {
		return err
	}
	dst, err := b.take("plaintext", len(enc))
	if err != nil {
		return err
	}
	copy(dst, enc)
	return nil
}

// ===== INLINE MESSAGES =====

// WriteMessage writes m as its type id followed by its payload. A nil
// message is written as NullMessageID with no payload.
func (b *Buffer) WriteMessage(m Message) error {
	if m == nil {
		return b.WriteUint16(NullMessageID)
	}
	if err := b.need("message", InlineSize(m)); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if err := b.WriteUint16(m.SerialID()); err != nil {
		return err
	}
	return m.Serialize(b)
}

// ReadMessage reads an inline message. The sentinel id yields nil. Any other
// id is instantiated through the buffer's resolver, receives parent's
// attributes, and then decodes its own payload.
func (b *Buffer) ReadMessage(parent Message) (Message, error) {
	id, err := b.ReadUint16()
	if err != nil {
		return nil, err
	}
	if id == NullMessageID {
		return nil, nil
	}
	if b.resolver == nil {
		return nil, ErrNoResolver
	}
	m, err := b.resolver.NewMessage(id)
	if err != nil {
		return nil, err
	}
	if parent != nil {
		b.resolver.CopyAttributes(parent, m)
	}
	if err := m.Unserialize(b); err != nil {
		return nil, err
	}
	return m, nil
}

// InlineSize returns the encoded size of m as an inline field.
func InlineSize(m Message) int {
	if m == nil {
		return InlineHeaderSize
	}
	return InlineHeaderSize + m.SerialSize()
}
