package ir

// Version constants for report format and tool.
const (
	// ReportVersion is the report schema version.
	ReportVersion = "1"

	// ToolVersion is the modcheck version.
	ToolVersion = "0.1.0"
)
