package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrDocumentTooLarge is returned when a document exceeds the configured
// size limit.
var ErrDocumentTooLarge = errors.New("loader: document exceeds size limit")

func loadFile(ctx context.Context, path string, limit int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("loader: %s is a directory", path)
	}
	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrDocumentTooLarge, limit)
	}
	return readLimited(file, limit)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrDocumentTooLarge, limit)
	}
	return data, nil
}
