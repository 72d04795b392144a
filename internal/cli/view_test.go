package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

const pagerPlain = "main\n link,  Home[Unknown role bogus]\n Sign up, button\n[Missing node 9]\nend of main\n"

func newTestPager(t *testing.T) PagerModel {
	t.Helper()
	summary := []byte(`{"errors":[{"kind":"unknown_role","nodeId":"3","message":"Unknown role bogus"},{"kind":"missing_node","nodeId":"9","message":"Missing node 9"}]}`)
	m, err := newPagerModel("tree.json", pagerPlain, pagerPlain, summary)
	if err != nil {
		t.Fatalf("newPagerModel() error: %v", err)
	}
	return m
}

func press(m PagerModel, keys ...string) PagerModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(PagerModel)
	}
	return m
}

func TestPagerFindsBrokenLines(t *testing.T) {
	m := newTestPager(t)
	if len(m.Lines) != 5 {
		t.Fatalf("Lines = %d, want 5", len(m.Lines))
	}
	if len(m.Broken) != 2 || m.Broken[0] != 1 || m.Broken[1] != 3 {
		t.Errorf("Broken = %v, want [1 3]", m.Broken)
	}
}

func TestPagerScrolling(t *testing.T) {
	m := newTestPager(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	m = next.(PagerModel)
	if m.Height != 2 {
		t.Fatalf("Height = %d, want 2", m.Height)
	}

	tests := []struct {
		name string
		keys []string
		want int
	}{
		{"down", []string{"down"}, 1},
		{"clamped at bottom", []string{"j", "j", "j", "j", "j"}, 3},
		{"clamped at top", []string{"up", "k"}, 0},
		{"end", []string{"G"}, 3},
		{"end then home", []string{"G", "g"}, 0},
		{"next broken", []string{"n"}, 1},
		{"next broken twice", []string{"n", "n"}, 3},
		{"previous broken", []string{"G", "N"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := press(m, tt.keys...).Offset; got != tt.want {
				t.Errorf("Offset = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPagerView(t *testing.T) {
	m := newTestPager(t)
	view := m.View()
	if !strings.Contains(view, iconError+" "+" link,  Home") {
		t.Errorf("broken line should be marked:\n%s", view)
	}
	if !strings.Contains(view, "tree.json · lines 1-5 of 5 · 2 broken") {
		t.Errorf("status bar missing:\n%s", view)
	}
}

func TestPagerQuits(t *testing.T) {
	_, cmd := newTestPager(t).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should send QuitMsg")
	}
}

func TestPagerRejectsBadSummary(t *testing.T) {
	if _, err := newPagerModel("x", "", "", []byte("{")); err == nil {
		t.Error("newPagerModel() should fail on a malformed summary")
	}
}
