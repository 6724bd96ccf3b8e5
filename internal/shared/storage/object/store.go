package object

import (
	"context"
	"fmt"
	"io"
)

// AssetStore defines the contract for reading the process-level binary assets
// (the letter template and the default CV). Stores are read-only: generated
// letters are never persisted.
type AssetStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ReadAll opens the asset at key and slurps it into memory.
func ReadAll(ctx context.Context, store AssetStore, key string) ([]byte, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open asset %s: %w", key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", key, err)
	}
	return data, nil
}
