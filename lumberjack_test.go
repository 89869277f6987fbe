package lumberjack_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/lumberjack"
	pkglj "github.com/bft-labs/lumberjack/pkg/lumberjack"
)

func TestRun_DrainsOnCancel(t *testing.T) {
	var (
		mu    sync.Mutex
		count int
	)
	writer := pkglj.BulkWriterFunc(func(ctx context.Context, actions []pkglj.Action) error {
		mu.Lock()
		defer mu.Unlock()
		count += len(actions)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	err := lumberjack.Run(ctx, lumberjack.Config{Interval: time.Hour}, func(d *lumberjack.Lumberjack) {
		d.Enqueue("a", "t", lumberjack.Body{"n": 1})
		d.Enqueue("a", "t", lumberjack.Body{"n": 2})
		cancel()
	}, pkglj.WithBulkWriter(writer))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Errorf("flushed %d documents, want 2", count)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := lumberjack.New(lumberjack.Config{}); err == nil {
		t.Error("New() expected error without a store URL")
	}
}
