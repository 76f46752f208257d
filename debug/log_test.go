package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	if !Enabled() {
		t.Fatalf("expected logging enabled")
	}
	Log("sched", "batch=%d", 12)
	for i := 0; i < 4; i++ {
		LogEvery(2, "queue", "tick")
	}
	Disable()
	Log("sched", "after disable")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "batch=12") || !strings.Contains(out, "cat=sched") {
		t.Fatalf("expected categorized entry, got:\n%s", out)
	}
	if strings.Count(out, "cat=queue") != 2 {
		t.Fatalf("expected 2 sampled entries, got:\n%s", out)
	}
	if strings.Contains(out, "after disable") {
		t.Fatalf("logged after Disable")
	}
}
