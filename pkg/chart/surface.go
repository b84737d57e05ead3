package chart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Surface draws a chart on the named canvas.
type Surface interface {
	Render(ctx context.Context, canvas string, c *Chart) error
}

// Document is what WriterSurface and DirSurface write.
type Document struct {
	Canvas string `json:"canvas"`
	Chart  *Chart `json:"chart"`
}

// WriterSurface writes one JSON document per line.
type WriterSurface struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSurface(w io.Writer) *WriterSurface {
	return &WriterSurface{w: w}
}

func (s *WriterSurface) Render(ctx context.Context, canvas string, c *Chart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(Document{Canvas: canvas, Chart: c})
	if err != nil {
		return fmt.Errorf("encoding %s: %w", canvas, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(append(payload, '\n'))
	return err
}

// DirSurface writes each canvas to <dir>/<canvas>.json.
type DirSurface struct {
	dir string
}

func NewDirSurface(dir string) (*DirSurface, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &DirSurface{dir: dir}, nil
}

func (s *DirSurface) Render(ctx context.Context, canvas string, c *Chart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", canvas, err)
	}
	path := filepath.Join(s.dir, canvas+".json")
	slog.Debug("writing chart", "canvas", canvas, "path", path, "module", "chart")
	return os.WriteFile(path, payload, 0o644)
}

// MultiSurface renders to every surface in order and stops at the first
// failure.
type MultiSurface []Surface

func (m MultiSurface) Render(ctx context.Context, canvas string, c *Chart) error {
	for _, s := range m {
		if err := s.Render(ctx, canvas, c); err != nil {
			return err
		}
	}
	return nil
}
