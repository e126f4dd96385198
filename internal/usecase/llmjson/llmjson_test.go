package llmjson

import (
	"reflect"
	"testing"
)

func TestDecode_Tiers(t *testing.T) {
	tests := []struct {
		name    string
		content string
		tier    Tier
		key     string
		want    string
	}{
		{"strict", `{"a": "x"}`, TierStrict, "a", "x"},
		{"strict with whitespace", "\n {\"a\": \"x\"} \n", TierStrict, "a", "x"},
		{"fenced", "```json\n{\"a\": \"y\"}\n```", TierEmbedded, "a", "y"},
		{"prose around", `Sure! Here it is: {"a": "z"} Hope that helps.`, TierEmbedded, "a", "z"},
		{"free text", "The patient probably has a cold.", TierDefaults, "a", ""},
		{"broken block", `{"a": "x"`, TierDefaults, "a", ""},
		{"array", `["a"]`, TierDefaults, "a", ""},
		{"null", `null`, TierDefaults, "a", ""},
		{"empty", ``, TierDefaults, "a", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			obj, tier := Decode(tc.content)
			if tier != tc.tier {
				t.Errorf("tier = %s, want %s", tier, tc.tier)
			}
			if got := obj.String(tc.key); got != tc.want {
				t.Errorf("String(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestObject_StringList(t *testing.T) {
	obj, _ := Decode(`{"list": [" fever ", "", 3, true, null, {"x": 1}, "cough"], "str": "fever", "num": 1}`)

	if got := obj.StringList("list"); !reflect.DeepEqual(got, []string{"fever", "3", "true", "cough"}) {
		t.Errorf("StringList(list) = %v", got)
	}
	if got := obj.StringList("str"); got != nil {
		t.Errorf("non-list field must yield nil, got %v", got)
	}
	if got := obj.StringList("missing"); got != nil {
		t.Errorf("missing field must yield nil, got %v", got)
	}
}

func TestObject_Bool(t *testing.T) {
	obj, _ := Decode(`{"t": true, "f": false, "s": "true", "n": 1}`)

	if !obj.Bool("t") {
		t.Error("Bool(t) = false")
	}
	for _, k := range []string{"f", "s", "n", "missing"} {
		if obj.Bool(k) {
			t.Errorf("Bool(%s) = true, want false", k)
		}
	}
}
