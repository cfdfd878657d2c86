// Package source provides the backends the content Loader reads from.
//
// Every source implements content.Source and reports failures by wrapping
// one of content.ErrSourceUnavailable, content.ErrMalformed or
// content.ErrInvalidRecord. Sources never validate records themselves; that
// is the Loader's job.
package source

import (
	"context"
	"fmt"
	"os"

	"github.com/truthdare/truthdare-api/internal/content"
	"github.com/truthdare/truthdare-api/internal/model"
)

// FileSource reads one JSON document per kind from the local filesystem.
type FileSource struct {
	paths map[model.Kind]string
}

// NewFileSource creates a FileSource for the given truths and dares files.
func NewFileSource(truthsPath, daresPath string) *FileSource {
	return &FileSource{paths: map[model.Kind]string{
		model.KindTruth: truthsPath,
		model.KindDare:  daresPath,
	}}
}

// Records opens and decodes the file for kind. The file is re-read on every
// call so a reload picks up edits made on disk.
func (s *FileSource) Records(ctx context.Context, kind model.Kind) ([]content.RawRecord, error) {
	path, ok := s.paths[kind]
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: no file configured for %s", content.ErrSourceUnavailable, kind.Plural())
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrSourceUnavailable, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrSourceUnavailable, err)
	}
	defer f.Close()

	return content.DecodeRecords(f)
}
