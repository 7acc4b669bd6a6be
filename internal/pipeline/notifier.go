package pipeline

import "context"

// NotifierFuncs adapts optional callbacks to the Notifier interface.
type NotifierFuncs struct {
	Status   func(state RunState, message string)
	Progress func(state RunState, percent int)
	Error    func(state RunState, message string)
	Complete func(state RunState)
}

func (n NotifierFuncs) OnStatus(state RunState, message string) {
	if n.Status != nil {
		n.Status(state, message)
	}
}

func (n NotifierFuncs) OnProgress(state RunState, percent int) {
	if n.Progress != nil {
		n.Progress(state, percent)
	}
}

func (n NotifierFuncs) OnError(state RunState, message string) {
	if n.Error != nil {
		n.Error(state, message)
	}
}

func (n NotifierFuncs) OnComplete(state RunState) {
	if n.Complete != nil {
		n.Complete(state)
	}
}

// ChannelNotifier forwards every notification to a channel.
//
// Non-terminal events are dropped once ctx is done so a consumer that stopped
// reading cannot wedge a cancelled run. Terminal events are always delivered.
type ChannelNotifier struct {
	ctx context.Context
	ch  chan<- Event
}

// NewChannelNotifier returns a notifier that sends to ch.
func NewChannelNotifier(ctx context.Context, ch chan<- Event) *ChannelNotifier {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ChannelNotifier{ctx: ctx, ch: ch}
}

func (n *ChannelNotifier) OnStatus(state RunState, message string) {
	n.send(Event{Kind: EventStatus, State: state, Message: message})
}

func (n *ChannelNotifier) OnProgress(state RunState, percent int) {
	n.send(Event{Kind: EventProgress, State: state, Percent: percent})
}

func (n *ChannelNotifier) OnError(state RunState, message string) {
	n.send(Event{Kind: EventError, State: state, Message: message})
}

func (n *ChannelNotifier) OnComplete(state RunState) {
	n.send(Event{Kind: EventComplete, State: state})
}

func (n *ChannelNotifier) send(ev Event) {
	if ev.Terminal() {
		n.ch <- ev
		return
	}
	select {
	case n.ch <- ev:
	case <-n.ctx.Done():
	}
}
