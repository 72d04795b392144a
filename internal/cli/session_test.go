package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/axnarrate/pkg/session"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("formatRelativeTime(-%s) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestSessionTable(t *testing.T) {
	now := time.Now()
	entries := []*session.Entry{
		{ID: "newest-id", Source: "stdin", Size: 100, CreatedAt: now.Add(-time.Minute)},
		{ID: "older-id", Source: "page.json", Size: 4096, CreatedAt: now.Add(-2 * time.Hour)},
	}
	out := sessionTable(entries, now)
	for _, want := range []string{"ID", "Source", "newest-id", "stdin", "100 B", "1m ago", "older-id", "4.0 KB", "2h ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("sessionTable() missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "newest-id") > strings.Index(out, "older-id") {
		t.Error("sessionTable() should keep the given order")
	}
}
