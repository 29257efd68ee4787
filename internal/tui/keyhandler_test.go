package tui

import "testing"

func TestVimKeySingleKeys(t *testing.T) {
	tests := []struct {
		key    string
		action string
	}{
		{"j", "move_down"},
		{"k", "move_up"},
		{"G", "go_bottom"},
		{"/", "search_start"},
		{"f", "filter_start"},
		{"r", "refresh"},
		{"y", "yank"},
		{"e", "export"},
		{"s", "settings"},
		{"h", "history"},
		{"v", "toggle_raw"},
		{"t", "toggle_compact"},
		{"T", "toggle_timestamp"},
		{"?", "toggle_help"},
		{"H", "resize_left"},
		{"L", "resize_right"},
		{"c", "clear"},
		{"b", "back"},
		{"q", "quit"},
	}

	for _, tt := range tests {
		v := NewVimKeyState()
		result := v.ProcessKey(tt.key)
		if result.Action != tt.action {
			t.Errorf("ProcessKey(%q).Action = %q, want %q", tt.key, result.Action, tt.action)
		}
		if result.Count != 1 {
			t.Errorf("ProcessKey(%q).Count = %d, want 1", tt.key, result.Count)
		}
	}
}

func TestVimKeyGGSequence(t *testing.T) {
	v := NewVimKeyState()

	result := v.ProcessKey("g")
	if result.Action != "pending" {
		t.Fatalf("first g: Action = %q, want pending", result.Action)
	}

	result = v.ProcessKey("g")
	if result.Action != "go_top" {
		t.Errorf("gg: Action = %q, want go_top", result.Action)
	}
}

func TestVimKeyNumericPrefix(t *testing.T) {
	v := NewVimKeyState()

	if r := v.ProcessKey("5"); r.Action != "pending" {
		t.Fatalf("5: Action = %q, want pending", r.Action)
	}
	r := v.ProcessKey("j")
	if r.Action != "move_down" {
		t.Errorf("5j: Action = %q, want move_down", r.Action)
	}
	if r.Count != 5 {
		t.Errorf("5j: Count = %d, want 5", r.Count)
	}
}

func TestVimKeyMultiDigitPrefix(t *testing.T) {
	v := NewVimKeyState()
	v.ProcessKey("1")
	v.ProcessKey("2")
	r := v.ProcessKey("k")
	if r.Action != "move_up" || r.Count != 12 {
		t.Errorf("12k = (%q, %d), want (move_up, 12)", r.Action, r.Count)
	}
}

func TestVimKeyInvalidSequenceResets(t *testing.T) {
	v := NewVimKeyState()
	v.ProcessKey("g")
	r := v.ProcessKey("x")
	if r.Action != "" {
		t.Errorf("gx: Action = %q, want empty", r.Action)
	}
	if v.GetPending() != "" {
		t.Errorf("pending = %q after invalid sequence, want empty", v.GetPending())
	}
}
