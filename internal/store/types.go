package store

// FileError is a file that was skipped during a run, with the reason.
type FileError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}
