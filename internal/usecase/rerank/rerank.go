// Package rerank reorders retrieved guidelines by lexical and tag overlap with the
// extracted symptoms and decides whether the selection is trustworthy enough to ground
// the classification.
package rerank

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/sanjeevani/internal/domain/mode"
	"github.com/kailas-cloud/sanjeevani/internal/domain/text"
	"github.com/kailas-cloud/sanjeevani/internal/usecase/index"
)

// TopN is how many candidates survive reranking.
const TopN = 3

// NoOverlapScore ranks candidates with neither lexical nor tag overlap below every other candidate.
const NoOverlapScore = -1e9

// tagWeight multiplies each (term, tag) match.
const tagWeight = 2

// synonyms expands a match term containing the key with extra phrasings guidelines commonly use.
var synonyms = []struct {
	key       string
	expansion []string
}{
	{"shortness of breath", []string{"breathlessness", "difficulty breathing"}},
	{"difficulty breathing", []string{"shortness of breath", "breathlessness"}},
	{"breathless", []string{"difficulty breathing", "shortness of breath"}},
	{"fits", []string{"convulsions", "seizures"}},
	{"seizure", []string{"convulsions"}},
	{"passed out", []string{"fainting", "unconscious"}},
	{"loose motion", []string{"diarrhoea", "diarrhea"}},
	{"loose stool", []string{"diarrhoea", "diarrhea"}},
	{"throwing up", []string{"vomiting"}},
	{"high temperature", []string{"fever"}},
}

// Ranked is a candidate with its overlap scores.
type Ranked struct {
	index.Candidate
	Lexical int
	Tag     int
	Score   float64
}

// Result is the reranked selection and the confidence decision taken on it.
type Result struct {
	Top        []Ranked
	Mode       mode.Mode
	MaxLexical int
}

// MatchTerms turns symptom phrases into distinct match terms: punctuation stripped,
// lower-cased, followed by synonym expansions, in first-seen order.
func MatchTerms(symptoms []string) []string {
	seen := make(map[string]struct{})
	var terms []string
	add := func(t string) {
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}

	base := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		t := text.StripPunct(s)
		base = append(base, t)
		add(t)
	}
	for _, t := range base {
		for _, syn := range synonyms {
			if t != "" && strings.Contains(t, syn.key) {
				for _, e := range syn.expansion {
					add(e)
				}
			}
		}
	}
	return terms
}

// Rerank scores candidates against the symptoms, keeps the best TopN (stable on ties)
// and derives the guideline mode from lexical overlap alone.
// Tags influence which candidates are selected but never the confidence decision.
func Rerank(candidates []index.Candidate, symptoms []string) Result {
	terms := MatchTerms(symptoms)

	ranked := make([]Ranked, len(candidates))
	for i, c := range candidates {
		lex := lexicalOverlap(terms, c)
		tag := tagOverlap(terms, c)
		score := float64(lex + tag)
		if lex == 0 && tag == 0 {
			score = NoOverlapScore
		}
		ranked[i] = Ranked{Candidate: c, Lexical: lex, Tag: tag, Score: score}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}

	// second pass: confidence from lexical overlap only
	maxLex := 0
	for _, r := range ranked {
		if l := lexicalOverlap(terms, r.Candidate); l > maxLex {
			maxLex = l
		}
	}

	return Result{
		Top:        ranked,
		Mode:       mode.FromConfidence(maxLex),
		MaxLexical: maxLex,
	}
}

func lexicalOverlap(terms []string, c index.Candidate) int {
	haystack := strings.ToLower(c.Entry.Title + " " + c.Entry.Guideline)
	n := 0
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			n++
		}
	}
	return n
}

func tagOverlap(terms []string, c index.Candidate) int {
	n := 0
	for _, tag := range c.Entry.Tags {
		lt := strings.ToLower(tag)
		for _, t := range terms {
			if strings.Contains(lt, t) {
				n++
			}
		}
	}
	return tagWeight * n
}
