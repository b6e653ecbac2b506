package protocol

import (
	"cmp"
	"fmt"
)

// Kind names the comparison a field failed.
type Kind uint8

const (
	KindMinimum Kind = iota
	KindMaximum
	KindValue
	KindMagic
	KindChecksum
	KindMessageID
	KindAvailableSize
)

var kindDescriptions = [...]string{
	KindMinimum:       "minimum",
	KindMaximum:       "maximum",
	KindValue:         "exact",
	KindMagic:         "magic number",
	KindChecksum:      "checksum",
	KindMessageID:     "message id",
	KindAvailableSize: "available size",
}

var kindOperators = [...]string{
	KindMinimum:       ">=",
	KindMaximum:       "<=",
	KindValue:         "==",
	KindMagic:         "==",
	KindChecksum:      "==",
	KindMessageID:     "==",
	KindAvailableSize: ">=",
}

// Description returns the human readable name used in error text.
func (k Kind) Description() string {
	if int(k) < len(kindDescriptions) {
		return kindDescriptions[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Operator returns the relation the actual value was required to satisfy.
func (k Kind) Operator() string {
	if int(k) < len(kindOperators) {
		return kindOperators[k]
	}
	return "?"
}

func (k Kind) String() string {
	return k.Description()
}

// CheckMin fails when v < min or v is NaN.
func CheckMin[T cmp.Ordered](typeName, field string, v, min T) error {
	if isNaN(v) || v < min {
		return NewInvalidMessage(typeName, field, KindMinimum, v, min)
	}
	return nil
}

// CheckMax fails when v > max or v is NaN.
func CheckMax[T cmp.Ordered](typeName, field string, v, max T) error {
	if isNaN(v) || v > max {
		return NewInvalidMessage(typeName, field, KindMaximum, v, max)
	}
	return nil
}

func isNaN[T cmp.Ordered](v T) bool {
	return v != v
}

// CheckRange fails when v is outside [min, max].
func CheckRange[T cmp.Ordered](typeName, field string, v, min, max T) error {
	if err := CheckMin(typeName, field, v, min); err != nil {
		return err
	}
	return CheckMax(typeName, field, v, max)
}

// CheckValue fails when v != want.
func CheckValue[T comparable](typeName, field string, v, want T) error {
	if v != want {
		return NewInvalidMessage(typeName, field, KindValue, v, want)
	}
	return nil
}

// CheckLength fails when a variable length field cannot be framed by a
// uint16 length prefix.
func CheckLength(typeName, field string, n int) error {
	return CheckMax(typeName, field, n, MaxVariableLength)
}
