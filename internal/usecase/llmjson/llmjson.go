// Package llmjson decodes JSON objects out of generative model output.
//
// Decoding runs three tiers in order: the whole text as a JSON object, then the
// outermost {...} block found in the text, then an empty object. Field accessors
// never fail; a missing or mistyped field yields the zero value.
package llmjson

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Tier reports which decoding tier produced an Object.
type Tier string

// Decoding tiers.
const (
	TierStrict   Tier = "strict"
	TierEmbedded Tier = "embedded"
	TierDefaults Tier = "defaults"
)

var objectBlock = regexp.MustCompile(`\{[\s\S]*\}`)

// Object is a decoded JSON object.
type Object map[string]any

// Decode extracts a JSON object from content.
func Decode(content string) (Object, Tier) {
	if obj, ok := decodeObject(content); ok {
		return obj, TierStrict
	}
	if block := objectBlock.FindString(content); block != "" {
		if obj, ok := decodeObject(block); ok {
			return obj, TierEmbedded
		}
	}
	return Object{}, TierDefaults
}

func decodeObject(s string) (Object, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// String returns the field as trimmed text. Strings are returned as is,
// numbers and booleans in their JSON form, anything else as "".
func (o Object) String(key string) string {
	return scalarText(o[key])
}

// StringList returns the non-empty trimmed elements of a list field.
// A missing or non-list field yields nil.
func (o Object) StringList(key string) []string {
	items, ok := o[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := scalarText(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Bool reports whether the field is the JSON literal true.
func (o Object) Bool(key string) bool {
	b, ok := o[key].(bool)
	return ok && b
}

func scalarText(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64, bool:
		return fmt.Sprint(x)
	default:
		return ""
	}
}
