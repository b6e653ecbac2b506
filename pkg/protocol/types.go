package protocol

import "fmt"

// Wire constants
const (
	// NullMessageID marks an absent inline message
	NullMessageID uint16 = 0xFFFF

	// MaxVariableLength is the largest raw data or text payload a uint16
	// length prefix can frame
	MaxVariableLength = 0xFFFF

	// InlineHeaderSize is the type id prefix written before a nested message
	InlineHeaderSize = 2
)

// FieldType describes how one introspected field is encoded on the wire.
type FieldType uint8

// Field types
const (
	TypeInt8 FieldType = iota + 1
	TypeUint8
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeFP32
	TypeFP64
	TypeRawData
	TypePlainText
	TypeMessage
)

var fieldTypeNames = map[FieldType]string{
	TypeInt8:      "int8_t",
	TypeUint8:     "uint8_t",
	TypeInt16:     "int16_t",
	TypeUint16:    "uint16_t",
	TypeInt32:     "int32_t",
	TypeUint32:    "uint32_t",
	TypeInt64:     "int64_t",
	TypeUint64:    "uint64_t",
	TypeFP32:      "fp32_t",
	TypeFP64:      "fp64_t",
	TypeRawData:   "rawdata",
	TypePlainText: "plaintext",
	TypeMessage:   "message",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", uint8(t))
}

// Size returns the fixed encoded width of t, or -1 for variable width types.
func (t FieldType) Size() int {
	switch t {
	case TypeInt8, TypeUint8:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFP32:
		return 4
	case TypeInt64, TypeUint64, TypeFP64:
		return 8
	default:
		return -1
	}
}
