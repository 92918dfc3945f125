// Package command handles everything outside draft threads: the explicit
// "!" command grammar and natural-language requests, with a confirmation
// step for low-confidence parses.
package command

import (
	"marks-content-agent/internal/model"
)

// Command is the parsed form of an operator request.
type Command interface {
	isCommand()
}

// AddMonitorCommand starts monitoring an account.
type AddMonitorCommand struct {
	Handle   string
	Category model.Category
	Priority int
}

// AddVoiceCommand adds an account as a voice reference and samples it.
type AddVoiceCommand struct {
	Handle  string
	Pillars []model.Pillar
}

// TagVoiceCommand retags an existing voice reference's pillars.
type TagVoiceCommand struct {
	Handle  string
	Pillars []model.Pillar
}

// RemoveAccountCommand stops monitoring an account.
type RemoveAccountCommand struct {
	Handle string
}

// AddFeedCommand registers an RSS feed to poll.
type AddFeedCommand struct {
	Name     string
	URL      string
	Category model.Category
}

// ListMonitorsCommand lists the monitored accounts and feeds.
type ListMonitorsCommand struct{}

// ListVoicesCommand lists the voice references and their sample counts.
type ListVoicesCommand struct{}

// RefreshVoicesCommand resamples voice references; all when Handle is empty.
type RefreshVoicesCommand struct {
	Handle string
}

// GeneratePostCommand drafts a single post on demand.
type GeneratePostCommand struct {
	Pillar model.Pillar
	Topic  string
}

// WeeklyBatchCommand drafts the next week's content batch.
type WeeklyBatchCommand struct{}

// HelpCommand prints the command reference.
type HelpCommand struct{}

func (AddMonitorCommand) isCommand()    {}
func (AddVoiceCommand) isCommand()      {}
func (TagVoiceCommand) isCommand()      {}
func (RemoveAccountCommand) isCommand() {}
func (AddFeedCommand) isCommand()       {}
func (ListMonitorsCommand) isCommand()  {}
func (ListVoicesCommand) isCommand()    {}
func (RefreshVoicesCommand) isCommand() {}
func (GeneratePostCommand) isCommand()  {}
func (WeeklyBatchCommand) isCommand()   {}
func (HelpCommand) isCommand()          {}
