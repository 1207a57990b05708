package scorm

import (
	"net/url"
	"time"
)

// CommandKind is an instruction for the page hosting the package.
type CommandKind string

const (
	CommandCallHook      CommandKind = "call-hook"
	CommandDispatchEvent CommandKind = "dispatch-event"
	CommandNavigate      CommandKind = "navigate"
	CommandRelaunch      CommandKind = "relaunch"
	CommandRestart       CommandKind = "restart"
)

// Command is queued for the page to poll; the page applies it to the
// package frame. Delivery and effect are best effort.
type Command struct {
	Kind        CommandKind `json:"kind"`
	Name        string      `json:"name,omitempty"`
	Location    string      `json:"location,omitempty"`
	SuspendData string      `json:"suspendData,omitempty"`
	URL         string      `json:"url,omitempty"`
	At          time.Time   `json:"at"`
}

// Resumer is one way of asking a package to restore a saved position. It
// returns false when it cannot apply to this package.
type Resumer interface {
	Name() string
	Resume(snap *Snapshot, at time.Time) (Command, bool)
}

// HookResumer calls a package-defined global function with the location.
type HookResumer struct {
	Function string
}

func (HookResumer) Name() string { return "hook" }

func (r HookResumer) Resume(snap *Snapshot, at time.Time) (Command, bool) {
	if r.Function == "" || !snap.HasResumePoint() {
		return Command{}, false
	}
	return Command{
		Kind:        CommandCallHook,
		Name:        r.Function,
		Location:    snap.Location,
		SuspendData: snap.SuspendData,
		At:          at,
	}, true
}

// EventResumer dispatches a custom DOM event into the package frame.
type EventResumer struct {
	Event string
}

func (EventResumer) Name() string { return "event" }

func (r EventResumer) Resume(snap *Snapshot, at time.Time) (Command, bool) {
	if r.Event == "" || snap.Location == "" {
		return Command{}, false
	}
	return Command{Kind: CommandDispatchEvent, Name: r.Event, Location: snap.Location, At: at}, true
}

// URLParamResumer relaunches the package with the location in its query.
type URLParamResumer struct {
	LaunchURL string
	Param     string
}

func (URLParamResumer) Name() string { return "url-param" }

func (r URLParamResumer) Resume(snap *Snapshot, at time.Time) (Command, bool) {
	if r.LaunchURL == "" || snap.Location == "" {
		return Command{}, false
	}
	u, err := url.Parse(r.LaunchURL)
	if err != nil {
		return Command{}, false
	}
	param := r.Param
	if param == "" {
		param = "location"
	}
	q := u.Query()
	q.Set(param, snap.Location)
	u.RawQuery = q.Encode()
	return Command{Kind: CommandRelaunch, Location: snap.Location, URL: u.String(), At: at}, true
}
