package session

import "errors"

// Errors returned by Session operations.
var (
	ErrDuplicateFilter  = errors.New("session: filter is already present in the stack")
	ErrFilterNotFound   = errors.New("session: filter not found")
	ErrNoOriginalImage  = errors.New("session: no original image has been imported")
	ErrNoPreviewImage   = errors.New("session: no preview image is available")
	ErrExportFromScaled = errors.New("session: cannot export directly from a scaled-down preview; export fromPreview=false or call UpdatePreview first")
	ErrPresetIndexRange = errors.New("session: preset index out of range")
	ErrPipelineRequired = errors.New("session: no pipeline configured")
)
