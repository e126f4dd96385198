package mode

import "testing"

func TestIsValid(t *testing.T) {
	valid := []Mode{Grounded, Fallback}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Mode{"", "hybrid", "GROUNDED"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestFromConfidence(t *testing.T) {
	tests := []struct {
		score int
		want  Mode
	}{
		{-1, Fallback},
		{0, Fallback},
		{1, Grounded},
		{4, Grounded},
	}
	for _, tc := range tests {
		if got := FromConfidence(tc.score); got != tc.want {
			t.Errorf("FromConfidence(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
