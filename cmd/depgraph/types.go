package main

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIComponent is a JSON-friendly component identity.
type CLIComponent struct {
	File      string `json:"file"`
	Component string `json:"component"`
}

// CLIEdge is one dependency: Dependent depends on Dependee.
type CLIEdge struct {
	Dependee  CLIComponent `json:"dependee"`
	Dependent CLIComponent `json:"dependent"`
}

// CLIFileError is a file skipped by the last analysis.
type CLIFileError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// CLIAnalyzeSummary describes a finished analysis run.
type CLIAnalyzeSummary struct {
	Root       string         `json:"root"`
	Database   string         `json:"database"`
	Files      int            `json:"files"`
	Edges      int            `json:"edges"`
	DurationMS int64          `json:"duration_ms"`
	Skipped    []CLIFileError `json:"skipped,omitempty"`
}
