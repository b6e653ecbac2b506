package protocol

// FrameHeader is what a Framing recovers from the bytes preceding a payload.
type FrameHeader struct {
	ID          uint16     // Message type id
	PayloadSize int        // Payload length in bytes
	Attributes  Attributes // Attributes framed around the payload, if any
}

// Framing adds the family-wide header and footer around a message payload.
type Framing interface {
	// HeaderSize returns the encoded header length.
	HeaderSize() int
	// FooterSize returns the encoded footer length.
	FooterSize() int
	// WriteHeader writes the header for m, whose payload is payloadSize bytes.
	WriteHeader(b *Buffer, m Message, payloadSize int) error
	// ReadHeader reads a header. It may switch the byte order of b.
	ReadHeader(b *Buffer) (FrameHeader, error)
	// WriteFooter writes the footer; frame holds the header and payload bytes.
	WriteFooter(b *Buffer, frame []byte) error
	// ReadFooter reads and checks the footer against frame.
	ReadFooter(b *Buffer, frame []byte) error
}

// PlainFraming frames a payload with its uint16 type id and uint16 length.
// It carries no attributes and no footer.
type PlainFraming struct{}

const plainHeaderSize = 4

func (PlainFraming) HeaderSize() int { return plainHeaderSize }

func (PlainFraming) FooterSize() int { return 0 }

func (PlainFraming) WriteHeader(b *Buffer, m Message, payloadSize int) error {
	if err := CheckLength("PlainFraming", "size", payloadSize); err != nil {
		return err
	}
	if err := b.WriteUint16(m.SerialID()); err != nil {
		return err
	}
	return b.WriteUint16(uint16(payloadSize))
}

func (PlainFraming) ReadHeader(b *Buffer) (FrameHeader, error) {
	id, err := b.ReadUint16()
	if err != nil {
		return FrameHeader{}, err
	}
	size, err := b.ReadUint16()
	if err != nil {
		return FrameHeader{}, err
	}
	return FrameHeader{ID: id, PayloadSize: int(size)}, nil
}

func (PlainFraming) WriteFooter(*Buffer, []byte) error { return nil }

func (PlainFraming) ReadFooter(*Buffer, []byte) error { return nil }
