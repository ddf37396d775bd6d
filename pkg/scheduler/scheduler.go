package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	corev1 "k8s.io/api/core/v1"

	"github.com/shepherd-sched/shepherd/pkg/events"
	"github.com/shepherd-sched/shepherd/pkg/history"
	"github.com/shepherd-sched/shepherd/pkg/kube"
	"github.com/shepherd-sched/shepherd/pkg/log"
	"github.com/shepherd-sched/shepherd/pkg/metrics"
	"github.com/shepherd-sched/shepherd/pkg/policy"
	"github.com/shepherd-sched/shepherd/pkg/types"
)

// Config holds the loop's operational settings.
type Config struct {
	SchedulerName     string
	ComponentSelector string
	PollInterval      time.Duration
	ErrorBackoff      time.Duration
}

// Scheduler drives the control loop: discover pending pods, place each one
// with the active policy, then let the selector re-evaluate the cascade.
type Scheduler struct {
	client   kube.Interface
	source   policy.Metrics
	selector *policy.Selector
	history  *history.Log
	broker   *events.Broker
	cfg      Config

	scheduled atomic.Uint64
	stopCh    chan struct{}
	doneCh    chan struct{}
	logger    zerolog.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(client kube.Interface, source policy.Metrics, selector *policy.Selector,
	hist *history.Log, broker *events.Broker, cfg Config) *Scheduler {
	return &Scheduler{
		client:   client,
		source:   source,
		selector: selector,
		history:  hist,
		broker:   broker,
		cfg:      cfg,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   log.WithComponent("scheduler"),
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	go s.run()
}

// Stop stops the loop and waits for the current pass to finish, so an
// in-flight binding completes or times out before shutdown statistics run.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// Scheduled returns how many pods this process has placed.
func (s *Scheduler) Scheduled() uint64 {
	return s.scheduled.Load()
}

// run is the main scheduler loop
func (s *Scheduler) run() {
	defer close(s.doneCh)
	s.logger.Info().
		Str("scheduler_name", s.cfg.SchedulerName).
		Str("selector", s.cfg.ComponentSelector).
		Msg("scheduler loop started")

	for {
		delay := s.cfg.PollInterval
		if err := s.iterate(context.Background()); err != nil {
			s.logger.Error().Err(err).Msg("[ERROR] scheduling pass failed")
			delay = s.cfg.ErrorBackoff
		}

		select {
		case <-s.stopCh:
			return
		case <-time.After(delay):
		}
	}
}

// iterate performs one scheduling pass.
func (s *Scheduler) iterate(ctx context.Context) error {
	pending, err := s.client.ListPendingPods(ctx, s.cfg.SchedulerName, s.cfg.ComponentSelector)
	if err != nil {
		return err
	}
	metrics.PendingPods.Set(float64(len(pending)))

	if len(pending) > 0 {
		s.logger.Info().Int("count", len(pending)).Msg("found pending pods")
		for i := range pending {
			if err := s.schedulePod(ctx, &pending[i]); err != nil {
				return err
			}
		}
		s.logBanditSummary()
	}

	if sw := s.selector.Evaluate(s.source); sw != nil {
		s.history.RecordSwitch(*sw)
		s.broker.Publish(&events.Event{
			Type:    events.EventStrategySwitch,
			Message: "strategy switched",
			Switch:  sw,
		})
		s.logger.Info().
			Str("from", string(sw.From)).
			Str("to", string(sw.To)).
			Float64("cluster_cpu", sw.ClusterCPU).
			Bool("estimated", !s.source.Available()).
			Msg("[STRATEGY SWITCH]")
	}

	return nil
}

// schedulePod places one pending pod. Binding failures never abort the pass;
// only listing errors propagate to the loop's backoff path.
func (s *Scheduler) schedulePod(ctx context.Context, pod *corev1.Pod) error {
	timer := metrics.NewTimer()
	podLog := log.WithPod(pod.Name)

	nodes, err := s.client.ListNodes(ctx)
	if err != nil {
		return err
	}

	candidates := FilterCandidates(nodes)
	if len(candidates) == 0 {
		podLog.Warn().Msg("no nodes available")
		return nil
	}

	active := s.selector.Active()
	chosen, err := active.Select(candidates, pod, s.source)
	if err != nil {
		podLog.Warn().Err(err).Msg("no suitable node found")
		return nil
	}

	nodeCPU := s.source.NodeCPUPercent(chosen.Name)

	if err := s.client.Bind(ctx, pod, chosen.Name); err != nil {
		s.observeBindFailure(podLog, chosen.Name, err)
		return nil
	}

	total := s.scheduled.Add(1)
	decision := types.Decision{
		ID:        uuid.NewString(),
		Pod:       pod.Name,
		Namespace: pod.Namespace,
		Node:      chosen.Name,
		Policy:    active.Name(),
		NodeCPU:   nodeCPU,
		Estimated: !s.source.Available(),
		Timestamp: time.Now(),
	}
	s.history.Append(decision)
	s.broker.Publish(&events.Event{
		Type:     events.EventPodScheduled,
		Message:  "pod scheduled",
		Decision: &decision,
	})
	timer.ObserveDuration(metrics.SchedulingLatency)

	podLog.Info().
		Str("policy", string(active.Name())).
		Str("node", chosen.Name).
		Float64("node_cpu", nodeCPU).
		Bool("estimated", decision.Estimated).
		Uint64("total_scheduled", total).
		Msg("[SCHEDULING]")
	return nil
}

func (s *Scheduler) observeBindFailure(podLog zerolog.Logger, nodeName string, err error) {
	var bindErr *kube.BindError
	if errors.As(err, &bindErr) && bindErr.Reason == kube.BindConflict {
		// Benign: the pod was claimed elsewhere or bound by a prior pass.
		podLog.Debug().Msg("binding conflict, pod no longer pending")
		return
	}

	reason := string(kube.BindTransient)
	event := podLog.Error().Str("node", nodeName).Err(err)
	if bindErr != nil {
		reason = string(bindErr.Reason)
		event = event.Str("status", bindErr.Status)
	}
	event.Str("reason", reason).Msg("[ERROR] failed to bind pod")

	s.broker.Publish(&events.Event{
		Type:    events.EventBindingFailed,
		Message: "binding failed",
		Reason:  reason,
	})
}

func (s *Scheduler) logBanditSummary() {
	if s.selector.ActiveType() != types.PolicyBandit {
		return
	}
	bandit, ok := s.selector.Active().(*policy.Bandit)
	if !ok {
		return
	}
	for _, arm := range bandit.Snapshot() {
		nodeLogger := log.WithNode(arm.Node)
		nodeLogger.Debug().
			Uint64("selections", arm.Selections).
			Float64("total_reward", arm.TotalReward).
			Float64("avg_reward", arm.AverageReward()).
			Msg("bandit arm")
	}
}

// FilterCandidates keeps nodes that are Ready and carry no taint that blocks
// scheduling.
func FilterCandidates(nodes []corev1.Node) []corev1.Node {
	var candidates []corev1.Node
	for _, node := range nodes {
		if isReady(&node) && !isTainted(&node) {
			candidates = append(candidates, node)
		}
	}
	return candidates
}

func isReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady && cond.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

func isTainted(node *corev1.Node) bool {
	for _, taint := range node.Spec.Taints {
		if taint.Effect == corev1.TaintEffectNoSchedule || taint.Effect == corev1.TaintEffectNoExecute {
			return true
		}
	}
	return false
}
