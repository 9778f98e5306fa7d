package resources

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
)

func init() {
	RegisterCodec(bzip2Codec{})
}

type bzip2Codec struct{}

func (bzip2Codec) Name() string { return "bzip2" }
func (bzip2Codec) Ext() string  { return ".bz2" }

func (bzip2Codec) NewReader(r io.Reader) (io.ReadCloser, error) {
	br, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 reader: %w", err)
	}
	return br, nil
}

func (bzip2Codec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	bw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: 9})
	if err != nil {
		return nil, fmt.Errorf("creating bzip2 writer: %w", err)
	}
	return bw, nil
}
