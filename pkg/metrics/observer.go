package metrics

import (
	"github.com/shepherd-sched/shepherd/pkg/events"
)

// Observer consumes scheduler events and mirrors them into Prometheus
// counters, so the control loop makes no counter calls of its own.
type Observer struct {
	sub    events.Subscriber
	broker *events.Broker
	doneCh chan struct{}
}

// NewObserver subscribes to the broker and starts counting.
func NewObserver(broker *events.Broker) *Observer {
	o := &Observer{
		sub:    broker.Subscribe(),
		broker: broker,
		doneCh: make(chan struct{}),
	}
	go o.run()
	return o
}

// Stop unsubscribes and waits for the observer goroutine to drain.
func (o *Observer) Stop() {
	o.broker.Unsubscribe(o.sub)
	<-o.doneCh
}

func (o *Observer) run() {
	defer close(o.doneCh)
	for event := range o.sub {
		switch event.Type {
		case events.EventPodScheduled:
			if event.Decision != nil {
				DecisionsTotal.WithLabelValues(string(event.Decision.Policy)).Inc()
			}
		case events.EventBindingFailed:
			BindingErrorsTotal.WithLabelValues(event.Reason).Inc()
		case events.EventStrategySwitch:
			StrategySwitchesTotal.Inc()
		}
	}
}
