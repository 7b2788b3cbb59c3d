package main

import (
	"fmt"
	"os"
	"path/filepath"

	"investigation-canvas/domain/core/entities"
	"investigation-canvas/infrastructure/prompts"
	"investigation-canvas/pkg/utils"

	"gopkg.in/yaml.v3"
)

// Script is a recorded editing session
type Script struct {
	Investigation string `yaml:"investigation" validate:"required"`
	// Seed is a seed records file, relative to the script
	Seed   string `yaml:"seed"`
	Width  int    `yaml:"width" validate:"min=0"`
	Height int    `yaml:"height" validate:"min=0"`
	Steps  []Step `yaml:"steps" validate:"dive"`
	Save   bool   `yaml:"save"`
	// Output is a PNG path, relative to the script
	Output string `yaml:"output"`
}

// Step is one scripted action. Exactly one field should be set.
type Step struct {
	Pointer          *PointerStep `yaml:"pointer"`
	Add              string       `yaml:"add" validate:"omitempty,oneof=event annotation"`
	Answer           *AnswerStep  `yaml:"answer"`
	Clear            bool         `yaml:"clear"`
	DeleteConnection bool         `yaml:"delete_connection"`
	Resize           *ResizeStep  `yaml:"resize"`
	Save             bool         `yaml:"save"`
}

// PointerStep is one pointer event
type PointerStep struct {
	Type     string  `yaml:"type" validate:"required,oneof=down move up dblclick contextmenu"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Modifier bool    `yaml:"modifier"`
}

// AnswerStep answers the oldest open prompt
type AnswerStep struct {
	Confirm     bool    `yaml:"confirm"`
	Cancel      bool    `yaml:"cancel"`
	Title       *string `yaml:"title"`
	Description *string `yaml:"description"`
	Source      *string `yaml:"source"`
	Author      *string `yaml:"author"`
}

// ResizeStep changes the surface size
type ResizeStep struct {
	Width  int `yaml:"width" validate:"required,min=1"`
	Height int `yaml:"height" validate:"required,min=1"`
}

func (a AnswerStep) answer() prompts.Answer {
	answer := prompts.Answer{
		Confirm: a.Confirm,
		Cancel:  a.Cancel,
		Update: entities.FieldUpdate{
			Title:       a.Title,
			Description: a.Description,
			Author:      a.Author,
		},
	}
	if a.Source != nil {
		source := entities.SourceCategory(*a.Source)
		answer.Update.Source = &source
	}
	return answer
}

func (s Step) count() int {
	n := 0
	for _, set := range []bool{s.Pointer != nil, s.Add != "", s.Answer != nil, s.Clear, s.DeleteConnection, s.Resize != nil, s.Save} {
		if set {
			n++
		}
	}
	return n
}

// loadScript reads and validates a script, resolving its paths against the script's directory
func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	if err := utils.ValidateStruct(script); err != nil {
		return nil, fmt.Errorf("invalid script %s: %w", path, err)
	}
	for i, step := range script.Steps {
		if step.count() != 1 {
			return nil, fmt.Errorf("invalid script %s: step %d must set exactly one action", path, i+1)
		}
	}

	dir := filepath.Dir(path)
	if script.Seed != "" && !filepath.IsAbs(script.Seed) {
		script.Seed = filepath.Join(dir, script.Seed)
	}
	if script.Output != "" && !filepath.IsAbs(script.Output) {
		script.Output = filepath.Join(dir, script.Output)
	}
	return &script, nil
}
