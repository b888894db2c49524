package debugger

import "testing"

func TestCommandHistoryAddSkipsEmptyAndRepeats(t *testing.T) {
	h := NewCommandHistory(10)
	h.Add("")
	h.Add("step")
	h.Add("step")

	if h.Size() != 1 {
		t.Fatalf("Size() = %d, want 1 (empty and repeat should be skipped)", h.Size())
	}
}

func TestCommandHistoryPreviousNext(t *testing.T) {
	h := NewCommandHistory(10)
	h.Add("step")
	h.Add("continue")
	h.Add("print a0")

	if got := h.Previous(); got != "print a0" {
		t.Errorf("Previous() = %q, want %q", got, "print a0")
	}
	if got := h.Previous(); got != "continue" {
		t.Errorf("Previous() = %q, want %q", got, "continue")
	}
	if got := h.Next(); got != "print a0" {
		t.Errorf("Next() = %q, want %q", got, "print a0")
	}
	if got := h.Next(); got != "" {
		t.Errorf("Next() past the end = %q, want empty", got)
	}
}

func TestCommandHistoryMaxSizeTrims(t *testing.T) {
	h := NewCommandHistory(2)
	h.Add("a")
	h.Add("b")
	h.Add("c")

	if h.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", h.Size())
	}
	all := h.GetAll()
	if all[0] != "b" || all[1] != "c" {
		t.Errorf("GetAll() = %v, want [b c]", all)
	}
}

func TestCommandHistoryDefaultMaxSize(t *testing.T) {
	h := NewCommandHistory(0)
	if h.maxSize != 1000 {
		t.Errorf("maxSize = %d, want default of 1000", h.maxSize)
	}
}

func TestCommandHistorySearch(t *testing.T) {
	h := NewCommandHistory(10)
	h.Add("break 0x100")
	h.Add("break 0x200")
	h.Add("continue")

	matches := h.Search("break")
	if len(matches) != 2 {
		t.Fatalf("Search(\"break\") = %v, want 2 matches", matches)
	}
}

func TestCommandHistoryClear(t *testing.T) {
	h := NewCommandHistory(10)
	h.Add("step")
	h.Clear()

	if h.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", h.Size())
	}
	if got := h.Previous(); got != "" {
		t.Errorf("Previous() after Clear = %q, want empty", got)
	}
}
