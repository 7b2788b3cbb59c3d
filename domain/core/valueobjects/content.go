package valueobjects

import (
	"fmt"
	"unicode/utf8"

	"investigation-canvas/domain/config"
	pkgerrors "investigation-canvas/pkg/errors"
)

// NodeContent is a value object for the text shown on a node
type NodeContent struct {
	title       string
	description string
}

// NewNodeContent validates title and description against cfg, or the defaults when nil.
// Text is kept exactly as given. Empty titles are allowed; the renderer substitutes a placeholder.
func NewNodeContent(title, description string, cfg *config.DomainConfig) (NodeContent, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if !utf8.ValidString(title) || !utf8.ValidString(description) {
		return NodeContent{}, pkgerrors.NewValidationError("content must be valid UTF-8")
	}

	if utf8.RuneCountInString(title) > cfg.MaxTitleLength {
		return NodeContent{}, pkgerrors.NewValidationError(
			fmt.Sprintf("title exceeds maximum length of %d characters", cfg.MaxTitleLength))
	}

	if utf8.RuneCountInString(description) > cfg.MaxDescriptionLength {
		return NodeContent{}, pkgerrors.NewValidationError(
			fmt.Sprintf("description exceeds maximum length of %d characters", cfg.MaxDescriptionLength))
	}

	return NodeContent{
		title:       title,
		description: description,
	}, nil
}

// Title returns the content title
func (c NodeContent) Title() string {
	return c.title
}

// Description returns the content body
func (c NodeContent) Description() string {
	return c.description
}

// Equals checks if two contents are equal
func (c NodeContent) Equals(other NodeContent) bool {
	return c.title == other.title && c.description == other.description
}
