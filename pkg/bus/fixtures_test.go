package bus

import (
	"github.com/ZentaChain/zentalk-bus/pkg/protocol"
)

// foo and bar are minimal message types used to exercise routing.
type foo struct {
	N int32
}

func (m *foo) SerialID() uint16 { return 1 }
func (m *foo) Name() string { return "Foo" }
func (m *foo) SerialSize() int { return 4 }
func (m *foo) Serialize(b *protocol.Buffer) error { return b.WriteInt32(m.N) }
func (m *foo) Validate() error { return nil }
func (m *foo) FieldNames() []string { return []string{"n"} }
func (m *foo) FieldValues(float64) []any { return []any{m.N} }
func (m *foo) FieldTypes() []protocol.FieldType { return []protocol.FieldType{protocol.TypeInt32} }

func (m *foo) Copy() protocol.Message {
	c := *m
	return &c
}

func (m *foo) Unserialize(b *protocol.Buffer) (err error) {
	m.N, err = b.ReadInt32()
	return err
}

type bar struct {
	Label string
}

func (m *bar) SerialID() uint16 { return 2 }
func (m *bar) Name() string { return "Bar" }
func (m *bar) SerialSize() int { return 2 + len(m.Label) }
func (m *bar) Serialize(b *protocol.Buffer) error { return b.WritePlainText(m.Label) }
func (m *bar) Validate() error { return nil }
func (m *bar) FieldNames() []string { return []string{"label"} }
func (m *bar) FieldValues(float64) []any { return []any{m.Label} }
func (m *bar) FieldTypes() []protocol.FieldType { return []protocol.FieldType{protocol.TypePlainText} }

func (m *bar) Copy() protocol.Message {
	c := *m
	return &c
}

func (m *bar) Unserialize(b *protocol.Buffer) (err error) {
	m.Label, err = b.ReadPlainText()
	return err
}

func drain(q *Queue) []protocol.Message {
	var out []protocol.Message
	for {
		m, ok := q.Remove()
		if !ok {
			return out
		}
		out = append(out, m)
	}
}
