package outdir

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	completeMarker = ".postlink.complete"
	failedMarker   = ".postlink.failed"
)

// Marker records a successful post-link run.
type Marker struct {
	Timestamp time.Time `json:"timestamp"`
	Target    string    `json:"target"`
	Toolchain string    `json:"toolchain"`
	Source    string    `json:"source"`
	Binary    string    `json:"binary"`
	Checksum  string    `json:"checksum"`
	Resources string    `json:"resources"`
	Outputs   []string  `json:"outputs,omitempty"`
}

// Checksum returns the hex SHA-256 of the file at path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Digest fingerprints a set of resource files by base name and content, so
// adding, removing or replacing an image changes it. Order matters.
func Digest(paths []string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		sum, err := Checksum(p)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\x00%s\n", filepath.Base(p), sum)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MarkComplete writes m into dir and clears any failure marker.
func MarkComplete(dir string, m Marker) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	os.Remove(filepath.Join(dir, failedMarker))
	return os.WriteFile(filepath.Join(dir, completeMarker), data, 0o644)
}

// MarkFailed records why the last run failed and clears the complete marker.
func MarkFailed(dir, reason string) error {
	data, err := json.MarshalIndent(map[string]any{
		"timestamp": time.Now().UTC(),
		"reason":    reason,
	}, "", "  ")
	if err != nil {
		return err
	}
	os.Remove(filepath.Join(dir, completeMarker))
	return os.WriteFile(filepath.Join(dir, failedMarker), data, 0o644)
}

// ReadMarker returns the completion marker of dir, if there is one.
func ReadMarker(dir string) (Marker, bool) {
	var m Marker
	data, err := os.ReadFile(filepath.Join(dir, completeMarker))
	if err != nil {
		return m, false
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, false
	}
	return m, true
}

// IsComplete reports whether dir holds a post-link result matching want's
// target, toolchain, linker output checksum (Source) and resource digest,
// whose binary is unchanged and whose outputs are all still present.
func IsComplete(dir string, want Marker) bool {
	m, ok := ReadMarker(dir)
	if !ok || want.Source == "" || m.Source != want.Source || m.Resources != want.Resources ||
		m.Target != want.Target || m.Toolchain != want.Toolchain {
		return false
	}
	for _, out := range m.Outputs {
		if _, err := os.Stat(out); err != nil {
			return false
		}
	}
	sum, err := Checksum(m.Binary)
	return err == nil && sum == m.Checksum
}

// Clean removes both markers.
func Clean(dir string) {
	os.Remove(filepath.Join(dir, completeMarker))
	os.Remove(filepath.Join(dir, failedMarker))
}
