// Package resources locates vendor firmware images (SoftDevices) that
// post-link hooks merge into application images.
package resources

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
)

const hexExt = ".hex"

// Resources lists the hex images available to a build.
type Resources struct {
	Root     string
	HexFiles []string
}

// IsHex reports whether path names an Intel HEX image, compressed or not.
func IsHex(path string) bool {
	if c := codecFor(path); c != nil {
		path = strings.TrimSuffix(path, c.Ext())
	}
	return strings.EqualFold(filepath.Ext(path), hexExt)
}

// Scan walks root and collects hex images in lexical order. A missing root
// yields an empty listing.
func Scan(root string, logger hclog.Logger) (*Resources, error) {
	res := &Resources{Root: root}
	if root == "" {
		return res, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsHex(d.Name()) {
			res.HexFiles = append(res.HexFiles, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("🔍 resource directory not found", "root", root)
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning resources in %s: %w", root, err)
	}

	sort.Strings(res.HexFiles)
	logger.Debug("🔍 resources scanned", "root", root, "hex_files", len(res.HexFiles))
	return res, nil
}

type decodedFile struct {
	io.ReadCloser
	file *os.File
}

func (d *decodedFile) Close() error {
	err := d.ReadCloser.Close()
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Open returns the decompressed contents of a hex image.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	c := codecFor(path)
	if c == nil {
		return f, nil
	}
	r, err := c.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &decodedFile{ReadCloser: r, file: f}, nil
}

// Import copies src into root, compressing it with the named codec unless
// codec is empty. It returns the stored path.
func Import(root, src, codec string) (string, error) {
	if !IsHex(src) {
		return "", fmt.Errorf("%s: not a hex image", src)
	}
	in, err := Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	name := filepath.Base(src)
	if c := codecFor(name); c != nil {
		name = strings.TrimSuffix(name, c.Ext())
	}
	var enc Codec
	if codec != "" {
		if enc, err = CodecByName(codec); err != nil {
			return "", err
		}
		name += enc.Ext()
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("creating resource directory: %w", err)
	}
	dst := filepath.Join(root, name)
	tmp, err := os.CreateTemp(root, "."+name+".*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	var w io.WriteCloser = tmp
	if enc != nil {
		if w, err = enc.NewWriter(tmp); err != nil {
			tmp.Close()
			return "", err
		}
	}
	if _, err := io.Copy(w, in); err != nil {
		w.Close()
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", dst, err)
	}
	if enc != nil {
		if err := w.Close(); err != nil {
			tmp.Close()
			return "", err
		}
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return dst, nil
}
