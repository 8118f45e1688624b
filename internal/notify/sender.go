package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// LogSender records notices for channels that have no endpoint configured.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (l *LogSender) Send(_ context.Context, notice Notice) error {
	l.log.Info("notice",
		zap.String("notice_id", notice.ID),
		zap.String("kind", string(notice.Kind)),
		zap.String("key", notice.Key),
		zap.String("pump_id", notice.PumpID.String()),
		zap.String("subject", notice.Subject),
	)
	return nil
}

// Router sends each notice through the sender registered for its kind.
type Router struct {
	routes map[Kind]Sender
}

func NewRouter(routes map[Kind]Sender) *Router {
	return &Router{routes: routes}
}

func (r *Router) Send(ctx context.Context, notice Notice) error {
	sender, ok := r.routes[notice.Kind]
	if !ok || sender == nil {
		return fmt.Errorf("no sender for notice kind %q", notice.Kind)
	}
	return sender.Send(ctx, notice)
}
