package streaming

import (
	"context"

	"insafe-lab/internal/domain/models"
)

// EventBusPublisher implements services.EventPublisher using the EventBus
// and the WebSocket hub. Either may be nil.
type EventBusPublisher struct {
	eventBus *EventBus
	wsHub    *WebSocketHub
}

// NewEventBusPublisher creates a new publisher adapter
func NewEventBusPublisher(eventBus *EventBus, wsHub *WebSocketHub) *EventBusPublisher {
	return &EventBusPublisher{
		eventBus: eventBus,
		wsHub:    wsHub,
	}
}

// PublishScan announces a completed scan
func (p *EventBusPublisher) PublishScan(ctx context.Context, res *models.ScanResult) error {
	return p.publish(ctx, NewScanEvent(res))
}

// PublishRetrain announces a finished retrain
func (p *EventBusPublisher) PublishRetrain(ctx context.Context, status models.LearningStatus) error {
	return p.publish(ctx, NewRetrainEvent(status))
}

// PublishReport announces a new community report
func (p *EventBusPublisher) PublishReport(ctx context.Context, rep *models.Report) error {
	return p.publish(ctx, NewReportEvent(rep))
}

func (p *EventBusPublisher) publish(ctx context.Context, event *Event) error {
	if p.eventBus != nil {
		if err := p.eventBus.Publish(ctx, event); err != nil {
			return err
		}
	}
	if p.wsHub != nil {
		p.wsHub.BroadcastEvent(event)
	}
	return nil
}
