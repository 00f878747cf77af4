package persist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// FileSink stores each diagram as a JSON entry file under a directory.
// Files are spread over subdirectories named after the first two hex digits
// of the SHA-256 of the diagram name.
type FileSink struct {
	dir string
}

// NewFileSink creates a sink rooted at dir, creating it if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storageErr(err, "create %s", dir)
	}
	return &FileSink{dir: dir}, nil
}

// fileEntry wraps a payload with the metadata List needs.
type fileEntry struct {
	Name    string          `json:"name"`
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data,omitempty"`
	Raw     []byte          `json:"raw,omitempty"`
}

// Name implements [Sink].
func (s *FileSink) Name() string { return "file" }

// Dir returns the root directory.
func (s *FileSink) Dir() string { return s.dir }

// Save implements [Sink]. JSON payloads are embedded verbatim; anything else
// is stored base64-encoded.
func (s *FileSink) Save(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	entry := fileEntry{Name: name, SavedAt: time.Now().UTC()}
	if json.Valid(data) {
		entry.Data = data
	} else {
		entry.Raw = data
	}
	buf, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return storageErr(err, "encode %s", name)
	}

	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return storageErr(err, "create %s", filepath.Dir(path))
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0644); err != nil {
		return storageErr(err, "write %s", name)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return storageErr(err, "write %s", name)
	}
	return nil
}

// Load implements [Sink].
func (s *FileSink) Load(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	entry, err := readEntry(s.path(name))
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storageErr(err, "read %s", name)
	}
	if entry.Data != nil {
		return entry.Data, nil
	}
	return entry.Raw, nil
}

// Delete implements [Sink].
func (s *FileSink) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return storageErr(err, "delete %s", name)
	}
	return nil
}

// List implements [Sink]. Unreadable entry files are skipped.
func (s *FileSink) List(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		entry, err := readEntry(path)
		if err != nil || entry.Name == "" {
			return nil
		}
		names = append(names, entry.Name)
		return nil
	})
	if err != nil {
		return nil, storageErr(err, "list %s", s.dir)
	}
	slices.Sort(names)
	return names, nil
}

// Close does nothing for file sinks.
func (s *FileSink) Close() error { return nil }

func (s *FileSink) path(name string) string {
	hash := Hash([]byte(name))
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

func readEntry(path string) (fileEntry, error) {
	var entry fileEntry
	data, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	err = json.Unmarshal(data, &entry)
	return entry, err
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var _ Sink = (*FileSink)(nil)
