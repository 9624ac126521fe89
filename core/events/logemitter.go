package events

import "log/slog"

// LogEmitter emits every event as a structured slog line, used by
// cmd/lendingd in place of a real downstream indexer subscription.
type LogEmitter struct {
	Logger *slog.Logger
}

// Emit implements Emitter.
func (l LogEmitter) Emit(e Event) {
	if l.Logger == nil {
		return
	}
	logEvent := e.ToLogEvent()
	args := make([]any, 0, len(logEvent.Attributes)*2)
	for k, v := range logEvent.Attributes {
		args = append(args, k, v)
	}
	l.Logger.Info(logEvent.Type, args...)
}
