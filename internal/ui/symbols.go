package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess = "✓" // Snapshot collected
	SymbolFail    = "✗" // Collaborator failure
	SymbolWarn    = "!" // Oversubscribed resource
)
