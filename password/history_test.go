package password

import "testing"

func TestCheckHistoryReportsPosition(t *testing.T) {
	history := []string{"hash-newest", "hash-2", "hash-3", "hash-4", "hash-oldest"}

	reused, position := CheckHistory("hash-3", history, DefaultHistoryLimit)
	if !reused {
		t.Fatal("expected reuse to be detected")
	}
	if position != 3 {
		t.Fatalf("position = %d, want 3", position)
	}
}

func TestCheckHistoryNoMatch(t *testing.T) {
	history := []string{"hash-a", "hash-b"}

	reused, position := CheckHistory("hash-fresh", history, DefaultHistoryLimit)
	if reused || position != 0 {
		t.Fatalf("CheckHistory = (%v, %d), want (false, 0)", reused, position)
	}
}

func TestCheckHistoryNeverConsultsBeyondLimit(t *testing.T) {
	history := []string{"h1", "h2", "h3", "h4", "h5", "h6-beyond-limit"}

	reused, position := CheckHistory("h6-beyond-limit", history, 5)
	if reused || position != 0 {
		t.Fatalf("entry beyond limit reported as reused: (%v, %d)", reused, position)
	}

	// The same entry inside the window is still found.
	reused, position = CheckHistory("h6-beyond-limit", history, 6)
	if !reused || position != 6 {
		t.Fatalf("CheckHistory with limit 6 = (%v, %d), want (true, 6)", reused, position)
	}
}

func TestCheckHistoryShortHistory(t *testing.T) {
	reused, position := CheckHistory("only", []string{"only"}, DefaultHistoryLimit)
	if !reused || position != 1 {
		t.Fatalf("CheckHistory = (%v, %d), want (true, 1)", reused, position)
	}

	if reused, _ := CheckHistory("anything", nil, DefaultHistoryLimit); reused {
		t.Fatal("empty history reported reuse")
	}

	if reused, _ := CheckHistory("", []string{""}, DefaultHistoryLimit); reused {
		t.Fatal("empty candidate reported reuse")
	}
}
