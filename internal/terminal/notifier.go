package terminal

import (
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/artifact"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/event"
)

// Notifier is the manager's set of observer callback slots. Registration is
// thread-safe; delivery is synchronous and fire-and-forget, and a panicking
// handler is contained by the emitter so it can never corrupt a transition.
type Notifier struct {
	logs      event.Emitter[string]
	progress  event.Emitter[artifact.Progress]
	downloads event.Emitter[bool]
	autoStart event.Emitter[bool]
	states    event.Emitter[StateChange]
}

// OnLogLine registers a handler for operational log lines, including every
// line of the terminal's output.
func (n *Notifier) OnLogLine(fn func(line string)) {
	n.logs.OnEvent(fn)
}

// OnDownloadProgress registers a handler for download progress reports.
func (n *Notifier) OnDownloadProgress(fn func(artifact.Progress)) {
	n.progress.OnEvent(fn)
}

// OnDownloadComplete registers a handler for download completion. The flag
// reports whether the transfer succeeded.
func (n *Notifier) OnDownloadComplete(fn func(success bool)) {
	n.downloads.OnEvent(fn)
}

// OnAutoStartComplete registers a handler for the outcome of an automatic
// start attempt after a download.
func (n *Notifier) OnAutoStartComplete(fn func(success bool)) {
	n.autoStart.OnEvent(fn)
}

// OnStateChange registers a handler for lifecycle state transitions.
func (n *Notifier) OnStateChange(fn func(StateChange)) {
	n.states.OnEvent(fn)
}

func (n *Notifier) emitLog(line string)                { n.logs.Emit(line) }
func (n *Notifier) emitProgress(p artifact.Progress)   { n.progress.Emit(p) }
func (n *Notifier) emitDownloadComplete(success bool)  { n.downloads.Emit(success) }
func (n *Notifier) emitAutoStartComplete(success bool) { n.autoStart.Emit(success) }
func (n *Notifier) emitStateChange(old, new State)     { n.states.Emit(StateChange{Old: old, New: new}) }
