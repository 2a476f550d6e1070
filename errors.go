package pointlab

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the load stage.
var (
	ErrNotFound          = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyGeometry     = errors.New("geometry has no points")
)

// ReconstructionError reports a failed pipeline stage.
type ReconstructionError struct {
	Stage string
	Err   error
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *ReconstructionError) Unwrap() error {
	return e.Err
}

// RenderError reports a failure to set up or run a render session.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// ExportError reports a failed animation capture.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed: %v", e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// SaveError reports a failed mesh or image write.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
