package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPollAndRebuildBroadcastsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.neo")
	if err := os.WriteFile(path, []byte(`func main() { var x: int = 1; }`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s := NewServer(":0")
	s.pollEvery = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := s.pollAndRebuild(ctx, path); err != nil {
		t.Fatalf("pollAndRebuild: %v", err)
	}
}
