package store

import (
	"marks-content-agent/internal/llm"
)

// The generator consumes these stores through its own interfaces; a signature
// drift here breaks the agent and monitor binaries.
var (
	_ llm.HistoryStore   = (*ContentStore)(nil)
	_ llm.FeedbackSource = (*FeedbackStore)(nil)
)
