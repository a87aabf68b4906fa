package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink delivers a finished artifact to the user: a file on disk, a save
// dialog, a browser download.
type Sink interface {
	Save(ctx context.Context, a Artifact) error
}

type SinkFunc func(ctx context.Context, a Artifact) error

func (f SinkFunc) Save(ctx context.Context, a Artifact) error { return f(ctx, a) }

// DirSink writes artifacts into Dir under their own filename.
type DirSink struct {
	Dir string
}

func (s DirSink) Save(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, a.Filename), a.Data, 0o644)
}
