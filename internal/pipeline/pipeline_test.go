package pipeline

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/standardbeagle/geocoder/internal/poi"
)

type recordingIndexer struct {
	mu    sync.Mutex
	added []poi.POI
}

func (r *recordingIndexer) Add(p poi.POI) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, p)
	return nil
}

func (r *recordingIndexer) Commit() error { return nil }

func TestRunDrainsSourceWithoutEnrichment(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := make(chan poi.POI, 4)
	source <- poi.POI{Names: []string{"cafe"}}
	source <- poi.POI{Names: []string{"bakery"}}
	close(source)

	idx := &recordingIndexer{}
	cfg := DefaultConfig()
	cfg.WorkerMultiplier = 1
	cfg.AdminRetryAttempts = 1

	if err := Run(context.Background(), cfg, source, nil, idx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
