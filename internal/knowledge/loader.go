package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// DefaultPath is the knowledge document read when no path is configured.
const DefaultPath = "data.json"

// ErrNotFound is returned by a Source when its backing document does not exist.
var ErrNotFound = errors.New("knowledge: document not found")

// Source fetches the raw knowledge document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// FileSource reads the knowledge document from the local filesystem.
type FileSource struct {
	Path string
}

// NewFileSource returns a FileSource for path, falling back to DefaultPath.
func NewFileSource(path string) FileSource {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	return FileSource{Path: path}
}

func (s FileSource) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path)
		}
		return nil, fmt.Errorf("knowledge: read %s: %w", s.Path, err)
	}
	return data, nil
}

func (s FileSource) String() string {
	return "file:" + s.Path
}

// Load fetches and parses the knowledge document once. Every failure is
// logged and degrades to the empty mapping; Load never fails.
func Load(ctx context.Context, src Source) Mapping {
	if src == nil {
		slog.Warn("no knowledge source configured, using empty knowledge")
		return Empty()
	}

	data, err := src.Fetch(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.Warn("knowledge document not found, using empty knowledge", "source", src.String())
		} else {
			slog.Warn("failed to read knowledge document, using empty knowledge", "source", src.String(), "err", err)
		}
		return Empty()
	}

	m, err := Parse(data)
	if err != nil {
		slog.Warn("knowledge document is not valid JSON, using empty knowledge", "source", src.String(), "err", err)
		return Empty()
	}

	slog.Info("knowledge loaded", "source", src.String(), "keys", m.Len())
	return m
}
