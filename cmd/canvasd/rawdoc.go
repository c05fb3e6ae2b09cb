package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/phanxgames/canvaslayout/internal/normalize"
)

// entityDoc/relationshipDoc give the CLI's raw-data input file a
// camelCase JSON shape distinct from normalize's internal Go-cased
// field names.
type entityDoc struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
	Labels     []string       `json:"labels,omitempty"`
}

type relationshipDoc struct {
	ID         string         `json:"id,omitempty"`
	Type       string         `json:"type"`
	FromGUID   string         `json:"from"`
	ToGUID     string         `json:"to"`
	Properties map[string]any `json:"properties,omitempty"`
}

type rawDataDoc struct {
	Entities      []entityDoc       `json:"entities"`
	Relationships []relationshipDoc `json:"relationships"`
}

// loadRawData reads a raw-data JSON document from path and converts it
// into the normalizer's input contract.
func loadRawData(path string) (normalize.RawData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return normalize.RawData{}, fmt.Errorf("read input file: %w", err)
	}

	var doc rawDataDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return normalize.RawData{}, fmt.Errorf("decode input file: %w", err)
	}

	input := normalize.RawData{
		Entities:      make([]normalize.Entity, 0, len(doc.Entities)),
		Relationships: make([]normalize.Relationship, 0, len(doc.Relationships)),
	}
	for _, e := range doc.Entities {
		input.Entities = append(input.Entities, normalize.Entity{
			ID: e.ID, Name: e.Name, Properties: e.Properties, Labels: e.Labels,
		})
	}
	for _, r := range doc.Relationships {
		input.Relationships = append(input.Relationships, normalize.Relationship{
			ID: r.ID, Type: r.Type, FromGUID: r.FromGUID, ToGUID: r.ToGUID, Properties: r.Properties,
		})
	}
	return input, nil
}
