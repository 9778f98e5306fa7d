package resources

import (
	"fmt"
	"io"
	"sort"
	"strings"

	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
)

// Codec compresses and decompresses a stored vendor image.
type Codec interface {
	// Name is the value accepted by --compress.
	Name() string

	// Ext is the file suffix the codec owns, including the dot.
	Ext() string

	// NewReader wraps a compressed stream.
	NewReader(r io.Reader) (io.ReadCloser, error)

	// NewWriter wraps a destination stream. Close flushes the trailer.
	NewWriter(w io.Writer) (io.WriteCloser, error)
}

var codecs = make(map[string]Codec)

// RegisterCodec makes a codec available by name and suffix.
func RegisterCodec(c Codec) {
	codecs[c.Name()] = c
}

// CodecByName returns the codec registered under name.
func CodecByName(name string) (Codec, error) {
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ferrors.ErrUnknownCodec, name)
	}
	return c, nil
}

// CodecNames lists registered codecs in sorted order.
func CodecNames() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// codecFor returns the codec whose suffix ends path, or nil for plain files.
func codecFor(path string) Codec {
	for _, c := range codecs {
		if strings.HasSuffix(path, c.Ext()) {
			return c
		}
	}
	return nil
}
