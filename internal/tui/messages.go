package tui

import (
	"time"

	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

// chatChangedMsg is sent whenever the chat session notifies a change.
type chatChangedMsg struct{}

// dashboardChangedMsg is sent whenever the invoice store notifies a change.
type dashboardChangedMsg struct{}

type dashboardLoadedMsg struct {
	analysisAt time.Time
	analysis   *model.Analysis
	stats      model.Stats
}

type connectDoneMsg struct {
	err error
}

type sendDoneMsg struct {
	err  error
	text string
}
