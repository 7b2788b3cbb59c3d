package ports

import (
	"context"
	"errors"

	"investigation-canvas/domain/core/entities"
	"investigation-canvas/domain/core/valueobjects"
)

var (
	// ErrEditCanceled is returned by an EditSession when the user dismisses the editor
	ErrEditCanceled = errors.New("edit canceled")

	// ErrSessionClosed is returned for work submitted to an editor session that has stopped
	ErrSessionClosed = errors.New("editor session closed")
)

// EditRequest describes the node a user asked to edit
type EditRequest struct {
	InvestigationID string
	NodeID          valueobjects.NodeID
	Fields          entities.Fields
	// Created is set when the node was just added and has default content
	Created bool
}

// EditSession is the modal field-editing workflow. Implementations may block
// until the user answers; the editor calls it off its input loop.
type EditSession interface {
	RequestEdit(ctx context.Context, req EditRequest) (entities.FieldUpdate, error)
}

// PromptKind identifies which destructive action needs confirming
type PromptKind string

const (
	PromptDeleteNode PromptKind = "delete_node"
	PromptClearScene PromptKind = "clear_scene"
)

// Prompt is a yes/no question put to the user before a destructive action
type Prompt struct {
	InvestigationID string
	Kind            PromptKind
	NodeID          valueobjects.NodeID
	Message         string
}

// Confirmer asks the user to confirm a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// NoticeLevel is the severity of a user-facing notice
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a message surfaced to the user, such as a save result
type Notice struct {
	InvestigationID string
	Level           NoticeLevel
	Message         string
	Err             error
}

// Notifier surfaces notices to the user
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// AutoConfirm answers every prompt with a fixed value
type AutoConfirm bool

// Confirm implements Confirmer
func (a AutoConfirm) Confirm(context.Context, Prompt) (bool, error) {
	return bool(a), nil
}

// CancelEdits cancels every edit request
type CancelEdits struct{}

// RequestEdit implements EditSession
func (CancelEdits) RequestEdit(context.Context, EditRequest) (entities.FieldUpdate, error) {
	return entities.FieldUpdate{}, ErrEditCanceled
}
