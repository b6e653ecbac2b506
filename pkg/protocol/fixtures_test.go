package protocol

import "bytes"

// Test-only message family.

const (
	pointID uint16 = 10
	noteID  uint16 = 11
	wrapID  uint16 = 12
	blobID  uint16 = 13
)

// point carries both optional attributes.
type point struct {
	X, Y  int16
	Label string
	ts    float64
	seq   uint32
}

func (*point) SerialID() uint16 { return pointID }
func (*point) Name() string { return "Point" }

func (p *point) SerialSize() int { return 2 + 2 + 2 + LegacyTextSize(p.Label) }

func (p *point) Validate() error {
	if err := CheckRange("Point", "x", p.X, -1000, 1000); err != nil {
		return err
	}
	if err := CheckRange("Point", "y", p.Y, -1000, 1000); err != nil {
		return err
	}
	return CheckLength("Point", "label", LegacyTextSize(p.Label))
}

func (p *point) Serialize(b *Buffer) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := b.WriteInt16(p.X); err != nil {
		return err
	}
	if err := b.WriteInt16(p.Y); err != nil {
		return err
	}
	return b.WritePlainText(p.Label)
}

func (p *point) Unserialize(b *Buffer) error {
	var err error
	if p.X, err = b.ReadInt16(); err != nil {
		return err
	}
	if p.Y, err = b.ReadInt16(); err != nil {
		return err
	}
	if p.Label, err = b.ReadPlainText(); err != nil {
		return err
	}
	return p.Validate()
}

func (*point) FieldNames() []string { return []string{"timestamp", "x", "y", "label"} }

func (p *point) FieldValues(base float64) []any {
	return []any{p.ts - base, p.X, p.Y, p.Label}
}

func (*point) FieldTypes() []FieldType {
	return []FieldType{TypeFP64, TypeInt16, TypeInt16, TypePlainText}
}

func (p *point) Copy() Message {
	c := *p
	return &c
}

func (p *point) Timestamp() float64 { return p.ts }
func (p *point) SetTimestamp(ts float64) { p.ts = ts }
func (p *point) SequenceID() uint32 { return p.seq }
func (p *point) SetSequenceID(s uint32) { p.seq = s }

// note carries no optional attributes.
type note struct {
	Text string
}

func (*note) SerialID() uint16 { return noteID }
func (*note) Name() string { return "Note" }
func (n *note) SerialSize() int { return 2 + LegacyTextSize(n.Text) }
func (n *note) Validate() error { return CheckLength("Note", "text", LegacyTextSize(n.Text)) }
func (*note) FieldNames() []string { return []string{"text"} }
func (n *note) FieldValues(float64) []any { return []any{n.Text} }
func (*note) FieldTypes() []FieldType { return []FieldType{TypePlainText} }

func (n *note) Serialize(b *Buffer) error {
	if err := n.Validate(); err != nil {
		return err
	}
	return b.WritePlainText(n.Text)
}

func (n *note) Unserialize(b *Buffer) error {
	var err error
	n.Text, err = b.ReadPlainText()
	return err
}

func (n *note) Copy() Message {
	c := *n
	return &c
}

// wrap nests another message and carries a timestamp only.
type wrap struct {
	Inner Message
	ts    float64
}

func (*wrap) SerialID() uint16 { return wrapID }
func (*wrap) Name() string { return "Wrap" }
func (w *wrap) SerialSize() int { return InlineSize(w.Inner) }
func (*wrap) FieldNames() []string { return []string{"inner"} }
func (w *wrap) FieldValues(float64) []any { return []any{w.Inner} }
func (*wrap) FieldTypes() []FieldType { return []FieldType{TypeMessage} }

func (w *wrap) Validate() error {
	if w.Inner == nil {
		return nil
	}
	return w.Inner.Validate()
}

func (w *wrap) Serialize(b *Buffer) error {
	return b.WriteMessage(w.Inner)
}

func (w *wrap) Unserialize(b *Buffer) error {
	var err error
	w.Inner, err = b.ReadMessage(w)
	return err
}

func (w *wrap) Copy() Message {
	c := *w
	if w.Inner != nil {
		c.Inner = w.Inner.Copy()
	}
	return &c
}

func (w *wrap) Timestamp() float64 { return w.ts }
func (w *wrap) SetTimestamp(ts float64) { w.ts = ts }

// blob owns a byte slice.
type blob struct {
	Data []byte
}

func (*blob) SerialID() uint16 { return blobID }
func (*blob) Name() string { return "Blob" }
func (b *blob) SerialSize() int { return 2 + len(b.Data) }
func (b *blob) Validate() error { return CheckLength("Blob", "data", len(b.Data)) }
func (*blob) FieldNames() []string { return []string{"data"} }
func (b *blob) FieldValues(float64) []any { return []any{b.Data} }
func (*blob) FieldTypes() []FieldType { return []FieldType{TypeRawData} }

func (b *blob) Serialize(buf *Buffer) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return buf.WriteRawData(b.Data)
}

func (b *blob) Unserialize(buf *Buffer) error {
	var err error
	b.Data, err = buf.ReadRawData()
	return err
}

func (b *blob) Copy() Message {
	return &blob{Data: bytes.Clone(b.Data)}
}

func newTestProtocol(framing Framing) (*Protocol, error) {
	return NewBuilder("Test").
		Framing(framing).
		Register(pointID, "Point", func() Message { return &point{} }).
		Register(noteID, "Note", func() Message { return &note{} }).
		Register(wrapID, "Wrap", func() Message { return &wrap{} }).
		Register(blobID, "Blob", func() Message { return &blob{} }).
		Build()
}
