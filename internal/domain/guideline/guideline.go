// Package guideline holds the immutable clinical guideline corpus.
package guideline

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/domain/risk"
)

// Entry is a single static guidance record. Identity is its position in the Corpus.
type Entry struct {
	Title       string     `json:"title" yaml:"title"`
	Guideline   string     `json:"guideline" yaml:"guideline"`
	Risk        risk.Level `json:"risk" yaml:"risk"`
	Referral    bool       `json:"referral" yaml:"referral"`
	SafeActions []string   `json:"safe_actions" yaml:"safe_actions"`
	Tags        []string   `json:"tags" yaml:"tags"`
}

// Validate reports whether the entry can serve as grounding material.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidGuideline)
	}
	if strings.TrimSpace(e.Guideline) == "" {
		return fmt.Errorf("%w: guideline text is required for %q", domain.ErrInvalidGuideline, e.Title)
	}
	if !e.Risk.IsValid() {
		return fmt.Errorf("%w: invalid risk %q for %q", domain.ErrInvalidGuideline, e.Risk, e.Title)
	}
	return nil
}

// Corpus is the ordered, read-only guideline collection.
type Corpus struct {
	entries []Entry
}

// NewCorpus validates and copies entries into an immutable corpus.
func NewCorpus(entries []Entry) (*Corpus, error) {
	out := make([]Entry, len(entries))
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = cloneEntry(entries[i])
	}
	return &Corpus{entries: out}, nil
}

// Len returns the number of entries.
func (c *Corpus) Len() int { return len(c.entries) }

// At returns a copy of the entry at position i.
func (c *Corpus) At(i int) (Entry, bool) {
	if i < 0 || i >= len(c.entries) {
		return Entry{}, false
	}
	return cloneEntry(c.entries[i]), true
}

// Texts returns the guideline text of every entry in corpus order.
func (c *Corpus) Texts() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Guideline
	}
	return out
}

// Entries returns copies of all entries in corpus order.
func (c *Corpus) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func cloneEntry(e Entry) Entry {
	e.SafeActions = append([]string(nil), e.SafeActions...)
	e.Tags = append([]string(nil), e.Tags...)
	return e
}
