// Package settings provides build metadata, runtime configuration, and
// context helpers used across the kvfilter CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "kvfilter"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// InputSettings describes where the records to filter come from.
type InputSettings struct {
	FromStdin bool
	Path      string
	// Select is the CEL expression picking the collection inside the document.
	Select string
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the application.
// It includes options for logging, input, output formatting, and error
// handling behavior.
type Run struct {
	MinLogLevel  int8
	Input        InputSettings
	OutputFormat string
	IsQuiet      bool
	NoColor      bool
	ExitOnError  bool
}

// NewCliParams initializes and returns a pointer to a Run struct with default CLI parameters.
// Input defaults to stdin and output to YAML.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Input: InputSettings{
			FromStdin: true,
		},
		OutputFormat: "yaml",
		IsQuiet:      false,
		NoColor:      false,
		ExitOnError:  true,
	}
}
