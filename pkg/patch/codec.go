package patch

import (
	"fmt"
	"io"

	"github.com/provide-io/flashkit/go/flashkit/pkg/ihex"
)

// Image is a sparse addressed image owned by a HexCodec.
type Image interface {
	Size() int
}

// HexCodec loads, merges and serializes sparse images. SoftDevicePatcher
// never inspects an Image itself.
type HexCodec interface {
	// FromBinary places data at [offset, offset+len(data)).
	FromBinary(data []byte, offset uint32) (Image, error)
	// ReadHex parses an Intel HEX stream.
	ReadHex(r io.Reader) (Image, error)
	// Merge overlays overlay onto base; overlay wins where both hold a byte.
	Merge(base, overlay Image) (Image, error)
	// WriteHex serializes img as Intel HEX.
	WriteHex(w io.Writer, img Image) error
}

// IHexCodec is the HexCodec backed by pkg/ihex.
type IHexCodec struct{}

var _ HexCodec = IHexCodec{}

func (IHexCodec) FromBinary(data []byte, offset uint32) (Image, error) {
	return ihex.FromBinary(data, offset)
}

func (IHexCodec) ReadHex(r io.Reader) (Image, error) {
	return ihex.Parse(r)
}

func (IHexCodec) Merge(base, overlay Image) (Image, error) {
	b, err := memory(base)
	if err != nil {
		return nil, err
	}
	o, err := memory(overlay)
	if err != nil {
		return nil, err
	}
	if err := b.Merge(o); err != nil {
		return nil, err
	}
	return b, nil
}

func (IHexCodec) WriteHex(w io.Writer, img Image) error {
	m, err := memory(img)
	if err != nil {
		return err
	}
	_, err = m.WriteTo(w)
	return err
}

func memory(img Image) (*ihex.Memory, error) {
	m, ok := img.(*ihex.Memory)
	if !ok {
		return nil, fmt.Errorf("image %T was not produced by IHexCodec", img)
	}
	return m, nil
}
