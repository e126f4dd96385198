package safety

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/sanjeevani/internal/domain/risk"
)

func TestSanitize(t *testing.T) {
	in := []string{
		"Give oral rehydration solution",
		"Give Paracetamol 500mg",
		"Start ANTIBIOTICS",
		"Keep the child warm",
		"Use cough syrup",
		"Avoid self-medication with drugs",
	}
	want := []string{"Give oral rehydration solution", "Keep the child warm"}

	if got := Sanitize(in); !reflect.DeepEqual(got, want) {
		t.Errorf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitize_NeverNil(t *testing.T) {
	if got := Sanitize(nil); got == nil || len(got) != 0 {
		t.Errorf("Sanitize(nil) = %#v, want empty slice", got)
	}
	if got := Sanitize([]string{"take tablet"}); got == nil || len(got) != 0 {
		t.Errorf("Sanitize(all blacklisted) = %#v, want empty slice", got)
	}
}

func TestSanitize_OutputHasNoBlacklistedTerm(t *testing.T) {
	in := []string{"tablet", "Capsule x", "xSYRUPx", "medicine cabinet", "drugstore visit", "rest", "fluids"}
	for _, a := range Sanitize(in) {
		if mentionsMedication(a) {
			t.Errorf("blacklisted action leaked: %q", a)
		}
	}
}

func TestRedFlags(t *testing.T) {
	got := RedFlags([]string{"  Sudden CHEST PAIN ", "mild fever", "felt confusion and fainting"})
	want := []string{"chest pain", "confusion", "fainting"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RedFlags = %q, want %q", got, want)
	}
	if RedFlags([]string{"mild headache"}) != nil {
		t.Error("expected no red flags")
	}
}

func TestUrgentAlert(t *testing.T) {
	tests := []struct {
		name    string
		level   risk.Level
		phrases []string
		want    bool
	}{
		{"high risk alone", risk.High, []string{"mild cough"}, true},
		{"red flag at low risk", risk.Low, []string{"patient unconscious after fall"}, true},
		{"red flag at medium risk", risk.Medium, []string{"blood in stool"}, true},
		{"neither", risk.Medium, []string{"runny nose"}, false},
		{"no phrases", risk.Low, nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := UrgentAlert(tc.level, tc.phrases); got != tc.want {
				t.Errorf("UrgentAlert = %v, want %v", got, tc.want)
			}
		})
	}
}
