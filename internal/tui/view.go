package tui

// ViewType identifies the pane that receives scroll keys.
type ViewType int

const (
	ViewOutput ViewType = iota
	ViewDebug
)
