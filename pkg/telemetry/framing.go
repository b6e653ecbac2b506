package telemetry

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/ZentaChain/zentalk-bus/pkg/protocol"
)

const (
	// SyncWord opens every frame. Read in the wrong byte order it shows as
	// swappedSyncWord, which is how decoders detect the sender's order.
	SyncWord        uint16 = 0x5A54
	swappedSyncWord uint16 = 0x545A

	HeaderSize = 2 + 2 + 2 + 8 + 4 // sync, id, size, timestamp, seq
	FooterSize = 4                 // BLAKE2b-256 prefix
)

// Framing is the telemetry frame layout:
//
//	sync(u16) id(u16) size(u16) timestamp(fp64) seq(u32) payload checksum[4]
//
// Timestamp and sequence id travel in the header, so every message of the
// family is Timestamped and Sequenced.
type Framing struct{}

var _ protocol.Framing = Framing{}

func (Framing) HeaderSize() int { return HeaderSize }

func (Framing) FooterSize() int { return FooterSize }

func (Framing) WriteHeader(b *protocol.Buffer, m protocol.Message, payloadSize int) error {
	if err := protocol.CheckLength(familyName, "size", payloadSize); err != nil {
		return err
	}
	attrs := protocol.AttributesOf(m)

	if err := b.WriteUint16(SyncWord); err != nil {
		return err
	}
	if err := b.WriteUint16(m.SerialID()); err != nil {
		return err
	}
	if err := b.WriteUint16(uint16(payloadSize)); err != nil {
		return err
	}
	if err := b.WriteFP64(attrs.Timestamp); err != nil {
		return err
	}
	return b.WriteUint32(attrs.SequenceID)
}

// ReadHeader switches b to the byte order the frame was written in.
func (Framing) ReadHeader(b *protocol.Buffer) (protocol.FrameHeader, error) {
	var head protocol.FrameHeader

	sync, err := b.ReadUint16()
	if err != nil {
		return head, err
	}
	switch sync {
	case SyncWord:
	case swappedSyncWord:
		b.SetOrder(swapOrder(b.Order()))
	default:
		return head, protocol.NewInvalidMessage(familyName, "sync", protocol.KindMagic,
			fmt.Sprintf("0x%04X", sync), fmt.Sprintf("0x%04X", SyncWord))
	}

	if head.ID, err = b.ReadUint16(); err != nil {
		return head, err
	}
	size, err := b.ReadUint16()
	if err != nil {
		return head, err
	}
	head.PayloadSize = int(size)

	if head.Attributes.Timestamp, err = b.ReadFP64(); err != nil {
		return head, err
	}
	if head.Attributes.SequenceID, err = b.ReadUint32(); err != nil {
		return head, err
	}
	head.Attributes.Has = protocol.AttrTimestamp | protocol.AttrSequenceID
	return head, nil
}

func (Framing) WriteFooter(b *protocol.Buffer, frame []byte) error {
	for _, c := range Checksum(frame) {
		if err := b.WriteUint8(c); err != nil {
			return err
		}
	}
	return nil
}

func (Framing) ReadFooter(b *protocol.Buffer, frame []byte) error {
	want := Checksum(frame)
	got := make([]byte, FooterSize)
	for i := range got {
		c, err := b.ReadUint8()
		if err != nil {
			return err
		}
		got[i] = c
	}
	if !bytes.Equal(got, want) {
		return protocol.NewInvalidMessage(familyName, "checksum", protocol.KindChecksum,
			fmt.Sprintf("0x%X", got), fmt.Sprintf("0x%X", want))
	}
	return nil
}

// Checksum returns the frame footer for header+payload bytes.
func Checksum(frame []byte) []byte {
	sum := blake2b.Sum256(frame)
	return sum[:FooterSize]
}

func swapOrder(order binary.ByteOrder) binary.ByteOrder {
	if order == binary.LittleEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
