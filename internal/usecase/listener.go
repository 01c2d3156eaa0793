package usecase

import (
	"context"
	"sync"

	"github.com/dshist/dshist/internal/lineage"
)

// MetadataListener receives the planner metadata of one query run. The
// executor publishes at most once; later publishes are dropped.
type MetadataListener struct {
	once sync.Once
	ch   chan lineage.QueryMetadata
}

func NewMetadataListener() *MetadataListener {
	return &MetadataListener{ch: make(chan lineage.QueryMetadata, 1)}
}

// Publish hands md to the waiting caller. It never blocks.
func (l *MetadataListener) Publish(md lineage.QueryMetadata) {
	l.once.Do(func() {
		l.ch <- md
	})
}

// Wait blocks until metadata is published or ctx is done.
func (l *MetadataListener) Wait(ctx context.Context) (lineage.QueryMetadata, error) {
	select {
	case md := <-l.ch:
		return md, nil
	case <-ctx.Done():
		return lineage.QueryMetadata{}, ctx.Err()
	}
}
