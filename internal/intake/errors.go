package intake

import "errors"

var (
	ErrInvalidFileType    = errors.New("invalid file type")
	ErrFileTooLarge       = errors.New("file too large")
	ErrSessionNotFound    = errors.New("session not found")
	ErrAnalysisInProgress = errors.New("analysis already in progress")
	ErrNoFileSelected     = errors.New("no file selected")
	ErrResultReady        = errors.New("result already available; submit a file to analyze again")
	ErrSuperseded         = errors.New("analysis superseded by a newer upload")
)

const (
	ErrorCodeInvalidFileType     = "invalid_file_type"
	ErrorCodeFileTooLarge        = "file_too_large"
	ErrorCodeAnalysisUnavailable = "analysis_unavailable"
	ErrorCodeAnalysisInProgress  = "analysis_in_progress"
	ErrorCodeNoFileSelected      = "no_file_selected"
	ErrorCodeResultReady         = "result_ready"
	ErrorCodeResultNotReady      = "result_not_ready"
)
