// Package insight adds related risks from the knowledge graph to a case.
package insight

import (
	"sort"

	"github.com/kailas-cloud/sanjeevani/internal/domain/text"
)

// graph is the consumer interface for the knowledge graph (ISP).
type graph interface {
	Lookup(symptom string) []string
}

// Augmenter looks up related risks for symptom phrases.
type Augmenter struct {
	graph graph
}

// New creates an augmenter. A nil graph yields no insights.
func New(g graph) *Augmenter {
	return &Augmenter{graph: g}
}

// Related returns the sorted union of related risks of every distinct normalized symptom.
// Unknown symptoms contribute nothing. The result is never nil.
func (a *Augmenter) Related(symptoms []string) []string {
	out := []string{}
	if a.graph == nil {
		return out
	}

	seen := make(map[string]struct{})
	done := make(map[string]struct{})
	for _, s := range symptoms {
		key := text.Normalize(s)
		if _, ok := done[key]; ok || key == "" {
			continue
		}
		done[key] = struct{}{}
		for _, r := range a.graph.Lookup(key) {
			if _, ok := seen[r]; !ok {
				seen[r] = struct{}{}
				out = append(out, r)
			}
		}
	}
	sort.Strings(out)
	return out
}
