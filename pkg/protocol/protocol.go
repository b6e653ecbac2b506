package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
)

// ErrInvalidRegistration is returned by Builder.Build for a malformed registry.
var ErrInvalidRegistration = errors.New("invalid registration")

// Factory returns a fresh, zero-valued message of one concrete type.
type Factory func() Message

type entry struct {
	id      uint16
	name    string
	factory Factory
}

// Builder collects the registrations of one message family.
type Builder struct {
	name    string
	framing Framing
	order   binary.ByteOrder
	entries []entry
}

// NewBuilder starts a registry for the family called name. The defaults are
// PlainFraming and big-endian byte order.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:    name,
		framing: PlainFraming{},
		order:   binary.BigEndian,
	}
}

// Framing sets the family framing.
func (b *Builder) Framing(f Framing) *Builder {
	b.framing = f
	return b
}

// ByteOrder sets the byte order used when encoding.
func (b *Builder) ByteOrder(order binary.ByteOrder) *Builder {
	b.order = order
	return b
}

// Register binds id and name to a concrete message factory.
func (b *Builder) Register(id uint16, name string, f Factory) *Builder {
	b.entries = append(b.entries, entry{id: id, name: name, factory: f})
	return b
}

// Build validates the registrations and returns an immutable Protocol.
func (b *Builder) Build() (*Protocol, error) {
	if b.framing == nil {
		return nil, fmt.Errorf("%w: %s: nil framing", ErrInvalidRegistration, b.name)
	}
	if b.order == nil {
		b.order = binary.BigEndian
	}

	p := &Protocol{
		name:    b.name,
		framing: b.framing,
		order:   b.order,
		byID:    treemap.NewWith(utils.UInt16Comparator),
		byName:  make(map[string]entry, len(b.entries)),
	}

	for _, e := range b.entries {
		if e.id == 0 || e.id == NullMessageID {
			return nil, fmt.Errorf("%w: %s: reserved id %d for %q", ErrInvalidRegistration, b.name, e.id, e.name)
		}
		if e.name == "" {
			return nil, fmt.Errorf("%w: %s: empty name for id %d", ErrInvalidRegistration, b.name, e.id)
		}
		if e.factory == nil {
			return nil, fmt.Errorf("%w: %s: nil factory for %q", ErrInvalidRegistration, b.name, e.name)
		}
		if _, dup := p.byID.Get(e.id); dup {
			return nil, fmt.Errorf("%w: %s: duplicate id %d", ErrInvalidRegistration, b.name, e.id)
		}
		if _, dup := p.byName[e.name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate name %q", ErrInvalidRegistration, b.name, e.name)
		}

		sample := e.factory()
		if sample == nil {
			return nil, fmt.Errorf("%w: %s: factory for %q returned nil", ErrInvalidRegistration, b.name, e.name)
		}
		if sample.SerialID() != e.id || sample.Name() != e.name {
			return nil, fmt.Errorf("%w: %s: %q registered as %d/%s but reports %d/%s",
				ErrInvalidRegistration, b.name, e.name, e.id, e.name, sample.SerialID(), sample.Name())
		}

		p.byID.Put(e.id, e)
		p.byName[e.name] = e
	}
	return p, nil
}

// Protocol is the closed registry and codec of one message family. It is
// immutable once built and safe for concurrent use.
type Protocol struct {
	name    string
	framing Framing
	order   binary.ByteOrder
	byID    *treemap.Map // uint16 -> entry
	byName  map[string]entry
}

// Name returns the family name.
func (p *Protocol) Name() string {
	return p.name
}

// Framing returns the family framing.
func (p *Protocol) Framing() Framing {
	return p.framing
}

// ByteOrder returns the byte order used when encoding.
func (p *Protocol) ByteOrder() binary.ByteOrder {
	return p.order
}

func (p *Protocol) lookup(id uint16) (entry, bool) {
	v, ok := p.byID.Get(id)
	if !ok {
		return entry{}, false
	}
	return v.(entry), true
}

func (p *Protocol) unknownID(id uint16) error {
	return NewInvalidMessage(p.name, "id", KindMessageID, id, "registered id")
}

// NewMessage instantiates the type registered under id.
func (p *Protocol) NewMessage(id uint16) (Message, error) {
	e, ok := p.lookup(id)
	if !ok {
		return nil, p.unknownID(id)
	}
	return e.factory(), nil
}

// NewMessageByName instantiates the type registered under name.
func (p *Protocol) NewMessageByName(name string) (Message, error) {
	e, ok := p.byName[name]
	if !ok {
		return nil, NewInvalidMessage(p.name, "name", KindMessageID, name, "registered name")
	}
	return e.factory(), nil
}

// MessageID returns the id registered under name.
func (p *Protocol) MessageID(name string) (uint16, error) {
	e, ok := p.byName[name]
	if !ok {
		return 0, NewInvalidMessage(p.name, "name", KindMessageID, name, "registered name")
	}
	return e.id, nil
}

// MessageName returns the name registered under id.
func (p *Protocol) MessageName(id uint16) (string, error) {
	e, ok := p.lookup(id)
	if !ok {
		return "", p.unknownID(id)
	}
	return e.name, nil
}

// MessageIDs returns the registered ids in ascending order.
func (p *Protocol) MessageIDs() []uint16 {
	keys := p.byID.Keys()
	ids := make([]uint16, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, k.(uint16))
	}
	return ids
}

// MessageNames returns the registered names ordered by id.
func (p *Protocol) MessageNames() []string {
	values := p.byID.Values()
	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, v.(entry).name)
	}
	return names
}

// CopyAttributes copies the cross-cutting attributes of src into dst.
// Payload fields are not touched.
func (p *Protocol) CopyAttributes(src, dst Message) {
	AttributesOf(src).ApplyTo(dst)
}

// SerializationSize returns the encoded length of m including framing.
func (p *Protocol) SerializationSize(m Message) int {
	return p.framing.HeaderSize() + m.SerialSize() + p.framing.FooterSize()
}

func (p *Protocol) checkRegistered(m Message) error {
	if m == nil {
		return fmt.Errorf("%w: %s: nil message", ErrInvalidMessage, p.name)
	}
	e, ok := p.lookup(m.SerialID())
	if !ok || e.name != m.Name() {
		return p.unknownID(m.SerialID())
	}
	return nil
}

// Serialize writes m, framed, at the cursor of b.
func (p *Protocol) Serialize(m Message, b *Buffer) error {
	if err := p.checkRegistered(m); err != nil {
		return err
	}
	size := m.SerialSize()
	if err := b.need(m.Name(), p.framing.HeaderSize()+size+p.framing.FooterSize()); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}

	start := b.Position()
	if err := p.framing.WriteHeader(b, m, size); err != nil {
		return err
	}
	payloadStart := b.Position()
	if err := m.Serialize(b); err != nil {
		return err
	}
	if written := b.Position() - payloadStart; written != size {
		return NewInvalidMessage(m.Name(), "size", KindValue, written, size)
	}
	return p.framing.WriteFooter(b, b.Bytes()[start:b.Position()])
}

// Encode returns the framed encoding of m.
func (p *Protocol) Encode(m Message) ([]byte, error) {
	if err := p.checkRegistered(m); err != nil {
		return nil, err
	}
	b := NewBuffer(p.SerializationSize(m))
	b.SetOrder(p.order)
	if err := p.Serialize(m, b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unserialize reads one framed message at the cursor of b. Inline messages
// resolve through p for the duration of the call.
func (p *Protocol) Unserialize(b *Buffer) (Message, error) {
	prev := b.Resolver()
	b.SetResolver(p)
	defer b.SetResolver(prev)

	start := b.Position()
	head, err := p.framing.ReadHeader(b)
	if err != nil {
		return nil, err
	}
	if err := b.need(p.name, head.PayloadSize+p.framing.FooterSize()); err != nil {
		return nil, err
	}

	m, err := p.NewMessage(head.ID)
	if err != nil {
		return nil, err
	}
	head.Attributes.ApplyTo(m)

	payloadStart := b.Position()
	if err := m.Unserialize(b); err != nil {
		return nil, err
	}
	if read := b.Position() - payloadStart; read != head.PayloadSize {
		return nil, NewInvalidMessage(m.Name(), "size", KindValue, read, head.PayloadSize)
	}

	if err := p.framing.ReadFooter(b, b.Bytes()[start:b.Position()]); err != nil {
		return nil, err
	}
	return m, nil
}

// Decode reads one framed message from data.
func (p *Protocol) Decode(data []byte) (Message, error) {
	b := WrapBuffer(data)
	b.SetOrder(p.order)
	return p.Unserialize(b)
}

// WriteMessage encodes m and writes it to w.
func (p *Protocol) WriteMessage(w io.Writer, m Message) error {
	data, err := p.Encode(m)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadMessage reads exactly one framed message from r. It returns io.EOF
// when r ends on a frame boundary and io.ErrUnexpectedEOF inside a frame.
func (p *Protocol) ReadMessage(r io.Reader) (Message, error) {
	headerSize := p.framing.HeaderSize()
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	hb := WrapBuffer(header)
	hb.SetOrder(p.order)
	head, err := p.framing.ReadHeader(hb)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, headerSize+head.PayloadSize+p.framing.FooterSize())
	copy(frame, header)
	if _, err := io.ReadFull(r, frame[headerSize:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return p.Decode(frame)
}
