package notify

import "context"

// LocalNotifier dispatches directly into the in-process hub registry. Used
// when REST handlers and the gateway run in one process.
type LocalNotifier struct {
	sink Sink
}

func NewLocalNotifier(sink Sink) *LocalNotifier {
	return &LocalNotifier{sink: sink}
}

func (n *LocalNotifier) Publish(ctx context.Context, event Event) error {
	Deliver(n.sink, event)
	return nil
}

func (n *LocalNotifier) Close() error {
	return nil
}
