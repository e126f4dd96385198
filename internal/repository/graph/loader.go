// Package graph loads the symptom to related-risk knowledge graph.
package graph

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/sanjeevani/internal/domain/text"
)

// Graph maps a normalized symptom phrase to related risk descriptions. Read-only after Load.
type Graph map[string][]string

// Load reads a JSON or YAML object of symptom -> [related risks] from path.
// The graph is optional: an empty path, an unreadable file or a malformed document
// all yield an empty graph, logged at warn level except for the empty path.
func Load(path string, logger *zap.Logger) Graph {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		logger.Debug("Knowledge graph disabled")
		return Graph{}
	}

	g, err := parse(path)
	if err != nil {
		logger.Warn("Knowledge graph unavailable, continuing without related risks",
			zap.String("path", path),
			zap.Error(err),
		)
		return Graph{}
	}

	logger.Info("Knowledge graph loaded", zap.String("path", path), zap.Int("symptoms", len(g)))
	return g
}

func parse(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	raw := map[string][]string{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return New(raw), nil
}

// New builds a graph from raw, normalizing keys and merging keys that normalize equally.
func New(raw map[string][]string) Graph {
	g := make(Graph, len(raw))
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		risks := raw[k]
		key := text.Normalize(k)
		if key == "" {
			continue
		}
		for _, r := range risks {
			if r = strings.TrimSpace(r); r != "" {
				g[key] = append(g[key], r)
			}
		}
	}
	return g
}

// Lookup returns the related risks for a normalized symptom.
func (g Graph) Lookup(symptom string) []string {
	return g[symptom]
}
