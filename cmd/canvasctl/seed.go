package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	domainServices "investigation-canvas/domain/services"

	"gopkg.in/yaml.v3"
)

// loadSeed reads seed records from a YAML or JSON file, chosen by extension.
// YAML is converted to JSON first so both formats decode identically,
// including the free-form raw payloads.
func loadSeed(path string) (domainServices.Seed, error) {
	var seed domainServices.Seed
	if path == "" {
		return seed, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return seed, fmt.Errorf("read seed: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return seed, fmt.Errorf("parse seed %s: %w", path, err)
		}
	}
	if err := json.Unmarshal(data, &seed); err != nil {
		return seed, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return seed, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("seed is not representable as JSON: %w", err)
	}
	return out, nil
}
