// Package guideline loads the guideline corpus from a JSON or YAML file.
package guideline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/sanjeevani/internal/domain"
	"github.com/kailas-cloud/sanjeevani/internal/domain/guideline"
)

// Load reads a top-level list of guideline entries from path.
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
// Unknown fields, missing titles or guideline text and invalid risk levels fail the load.
func Load(path string) (*guideline.Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read guidelines %s: %w", path, err)
	}

	var entries []guideline.Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = decodeYAML(data)
	default:
		entries, err = decodeJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse guidelines %s: %w", path, err)
	}

	corpus, err := guideline.NewCorpus(entries)
	if err != nil {
		return nil, fmt.Errorf("load guidelines %s: %w", path, err)
	}
	return corpus, nil
}

func decodeJSON(data []byte) ([]guideline.Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var entries []guideline.Entry
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidGuideline, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after guideline list", domain.ErrInvalidGuideline)
	}
	return entries, nil
}

func decodeYAML(data []byte) ([]guideline.Entry, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var entries []guideline.Entry
	if err := dec.Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidGuideline, err)
	}
	return entries, nil
}
