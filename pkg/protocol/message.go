package protocol

import (
	"fmt"
	"strings"
)

// Message is one schema-typed unit exchanged between components. Concrete
// types are registered with a Protocol, which assigns SerialID and Name.
type Message interface {
	// SerialID returns the registry id of the concrete type.
	SerialID() uint16
	// Name returns the registry name of the concrete type.
	Name() string
	// SerialSize returns the exact payload length Serialize will write.
	SerialSize() int
	// Serialize validates the message and writes its payload fields.
	Serialize(b *Buffer) error
	// Unserialize reads the payload fields and validates them.
	Unserialize(b *Buffer) error
	// Validate checks the populated fields against their declared bounds.
	Validate() error

	FieldNames() []string
	// FieldValues returns the field values in FieldNames order. Time
	// fields are reported relative to base.
	FieldValues(base float64) []any
	FieldTypes() []FieldType

	// Copy returns an independent instance. Types owning byte slices or
	// nested messages must duplicate them.
	Copy() Message
}

// Sequenced is implemented by message types carrying a sequence id.
type Sequenced interface {
	SequenceID() uint32
	SetSequenceID(seq uint32)
}

// Timestamped is implemented by message types carrying a timestamp, in
// seconds since the Unix epoch.
type Timestamped interface {
	Timestamp() float64
	SetTimestamp(ts float64)
}

// SequenceID returns the sequence id of m, or ErrNotSupported.
func SequenceID(m Message) (uint32, error) {
	s, ok := m.(Sequenced)
	if !ok {
		return 0, notSupported(m, "sequence id")
	}
	return s.SequenceID(), nil
}

// SetSequenceID sets the sequence id of m, or returns ErrNotSupported.
func SetSequenceID(m Message, seq uint32) error {
	s, ok := m.(Sequenced)
	if !ok {
		return notSupported(m, "sequence id")
	}
	s.SetSequenceID(seq)
	return nil
}

// Timestamp returns the timestamp of m, or ErrNotSupported.
func Timestamp(m Message) (float64, error) {
	t, ok := m.(Timestamped)
	if !ok {
		return 0, notSupported(m, "timestamp")
	}
	return t.Timestamp(), nil
}

// SetTimestamp sets the timestamp of m, or returns ErrNotSupported.
func SetTimestamp(m Message, ts float64) error {
	t, ok := m.(Timestamped)
	if !ok {
		return notSupported(m, "timestamp")
	}
	t.SetTimestamp(ts)
	return nil
}

// ===== ATTRIBUTES =====

// AttrMask records which attributes an Attributes value carries.
type AttrMask uint8

const (
	AttrTimestamp AttrMask = 1 << iota
	AttrSequenceID
)

// Attributes are the cross-cutting values shared by a message and the
// inline messages nested in it.
type Attributes struct {
	Timestamp  float64
	SequenceID uint32
	Has        AttrMask
}

// AttributesOf extracts the attributes m supports.
func AttributesOf(m Message) Attributes {
	var a Attributes
	if t, ok := m.(Timestamped); ok {
		a.Timestamp = t.Timestamp()
		a.Has |= AttrTimestamp
	}
	if s, ok := m.(Sequenced); ok {
		a.SequenceID = s.SequenceID()
		a.Has |= AttrSequenceID
	}
	return a
}

// ApplyTo copies the carried attributes into m where m supports them.
func (a Attributes) ApplyTo(m Message) {
	if a.Has&AttrTimestamp != 0 {
		if t, ok := m.(Timestamped); ok {
			t.SetTimestamp(a.Timestamp)
		}
	}
	if a.Has&AttrSequenceID != 0 {
		if s, ok := m.(Sequenced); ok {
			s.SetSequenceID(a.SequenceID)
		}
	}
}

// ===== INTROSPECTION =====

// Dump renders m as Name{field=value ...} using its introspection lists.
func Dump(m Message, base float64) string {
	if m == nil {
		return "<nil>"
	}
	names := m.FieldNames()
	values := m.FieldValues(base)

	var sb strings.Builder
	sb.WriteString(m.Name())
	sb.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			sb.WriteByte(' ')
		}
		var v any
		if i < len(values) {
			v = values[i]
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		switch val := v.(type) {
		case Message:
			sb.WriteString(Dump(val, base))
		case []byte:
			fmt.Fprintf(&sb, "%x", val)
		case string:
			fmt.Fprintf(&sb, "%q", val)
		default:
			fmt.Fprintf(&sb, "%v", val)
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
