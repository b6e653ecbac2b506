// Package protocol implements the typed binary message codec.
//
// The protocol package defines the Message contract every wire-level message
// type implements, the Buffer used to encode and decode their fields, and the
// Protocol registry that binds one message family's ids and names to
// concrete types and frames their payloads.
//
// # Field Encoding
//
// Byte order is selected per Buffer and applies to every multi-byte field:
//   - int8/uint8, int16/uint16, int32/uint32, int64: fixed width two's complement
//   - uint64: fixed width, decoded as a signed int64 (legacy behavior)
//   - fp32/fp64: IEEE-754
//   - rawdata: uint16 length followed by the bytes
//   - plaintext: uint16 length followed by ISO-8859-1 bytes, cut at the first NUL
//   - message: uint16 type id followed by the nested payload, or 0xFFFF when absent
//
// # Framing
//
// Message.Serialize writes payload fields only. Protocol.Serialize wraps the
// payload with the family Framing (header and footer). PlainFraming writes the
// type id and payload length; families may frame attributes such as
// timestamps, magic numbers and checksums.
//
// # Errors
//
// Every encode, decode and validation failure matches ErrInvalidMessage.
// Field and framing failures are an *InvalidMessageError whose text follows
//
//	<Type>.<field> : invalid <kind> value (<actual> <op> <expected>)
//
// Accessing an optional attribute (SequenceID, Timestamp) on a type that does
// not implement Sequenced or Timestamped returns ErrNotSupported.
//
// # Usage Example
//
//	p, err := protocol.NewBuilder("Telemetry").
//	    Register(1, "Heartbeat", func() protocol.Message { return &Heartbeat{} }).
//	    Build()
//
//	data, err := p.Encode(&Heartbeat{})
//	msg, err := p.Decode(data)
package protocol
