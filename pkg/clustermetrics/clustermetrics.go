package clustermetrics

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	corev1 "k8s.io/api/core/v1"

	"github.com/shepherd-sched/shepherd/pkg/log"
)

// DefaultCacheTTL is how long a cached node sample stays valid.
const DefaultCacheTTL = 5 * time.Second

// Estimator constants: base load plus a per-pod increment, capped below
// saturation so estimated nodes stay schedulable.
const (
	estimateBase   = 15.0
	estimatePerPod = 8.0
	estimateCap    = 90.0
)

// defaultCPUPercent is returned when a node is known but has no sample.
const defaultCPUPercent = 50.0

// defaultPodCPUMillis is returned when pod usage cannot be read.
const defaultPodCPUMillis int64 = 100

// ClusterClient is the cluster access the metrics source needs.
type ClusterClient interface {
	ListNodes(ctx context.Context) ([]corev1.Node, error)
	CountPodsOnNode(ctx context.Context, nodeName string) (int, error)
	ListNodeUsage(ctx context.Context) (map[string]corev1.ResourceList, error)
	PodUsage(ctx context.Context, namespace, name string) (corev1.ResourceList, error)
}

type sample struct {
	percent   float64
	estimated bool
	taken     time.Time
}

// Source serves per-node CPU percentages to the placement policies.
//
// Samples come from the metrics API and are cached per node for the TTL.
// When the metrics API is unreachable at startup or fails outright later,
// the source latches into estimator mode for the remainder of the process
// and derives CPU from the pod count on each node.
type Source struct {
	client      ClusterClient
	ttl         time.Duration
	callTimeout time.Duration

	mu          sync.RWMutex
	nodeCache   map[string]sample
	podCache    map[string]podSample
	available   bool
	lastRefresh time.Time

	now    func() time.Time
	logger zerolog.Logger
}

type podSample struct {
	millis int64
	taken  time.Time
}

// NewSource probes the metrics API once and returns a ready source. A failed
// probe latches estimator mode; the process keeps running on estimates.
func NewSource(client ClusterClient, ttl time.Duration) *Source {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	s := &Source{
		client:      client,
		ttl:         ttl,
		callTimeout: 5 * time.Second,
		nodeCache:   make(map[string]sample),
		podCache:    make(map[string]podSample),
		available:   true,
		now:         time.Now,
		logger:      log.WithComponent("clustermetrics"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
	defer cancel()
	if _, err := client.ListNodeUsage(ctx); err != nil {
		s.available = false
		s.logger.Warn().Err(err).Msg("metrics API unavailable, falling back to pod-count estimates")
	} else {
		s.logger.Info().Msg("metrics API available, using real node metrics")
	}
	return s
}

// Available reports whether real metrics are being served. Once latched to
// false it never recovers within the process lifetime.
func (s *Source) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.available
}

// NodeCPUPercent returns the CPU usage of one node as a percentage of its
// allocatable CPU, in [0,100]. Cache hits inside the TTL are served without
// a network call.
func (s *Source) NodeCPUPercent(name string) float64 {
	if pct, ok := s.cachedNode(name); ok {
		return pct
	}

	if s.Available() {
		if err := s.refresh(); err == nil {
			if pct, ok := s.cachedNode(name); ok {
				return pct
			}
			// Known cluster, no sample for this node.
			return s.store(name, defaultCPUPercent, false)
		}
	}

	return s.store(name, s.estimate(name), true)
}

// ClusterCPUPercent returns the arithmetic mean of per-node CPU across all
// observed nodes, or 50 when no nodes are known.
func (s *Source) ClusterCPUPercent() float64 {
	percents := s.nodePercents()
	if len(percents) == 0 {
		return defaultCPUPercent
	}

	total := 0.0
	for _, pct := range percents {
		total += pct
	}
	return total / float64(len(percents))
}

// NodePercents returns a snapshot of every observed node's CPU percentage.
func (s *Source) NodePercents() map[string]float64 {
	return s.nodePercents()
}

// NodeMemoryPercent returns the memory usage of one node as a percentage of
// its allocatable memory, or 50 when it cannot be determined.
func (s *Source) NodeMemoryPercent(name string) float64 {
	if !s.Available() {
		return defaultCPUPercent
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
	defer cancel()

	usage, err := s.client.ListNodeUsage(ctx)
	if err != nil {
		s.latchUnavailable(err)
		return defaultCPUPercent
	}
	nodes, err := s.client.ListNodes(ctx)
	if err != nil {
		return defaultCPUPercent
	}

	used, ok := usage[name]
	if !ok {
		return defaultCPUPercent
	}
	for _, node := range nodes {
		if node.Name != name {
			continue
		}
		usedBytes := used.Memory().Value()
		allocBytes := node.Status.Allocatable.Memory().Value()
		return clampPercent(ratioPercent(usedBytes, allocBytes))
	}
	return defaultCPUPercent
}

// PodCPUMillis returns the aggregate CPU usage of a pod in millicores,
// defaulting to 100 when the metrics API cannot answer.
func (s *Source) PodCPUMillis(namespace, name string) int64 {
	key := namespace + "/" + name

	s.mu.RLock()
	cached, ok := s.podCache[key]
	fresh := ok && s.now().Sub(cached.taken) <= s.ttl
	s.mu.RUnlock()
	if fresh {
		return cached.millis
	}

	if !s.Available() {
		return defaultPodCPUMillis
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
	defer cancel()

	usage, err := s.client.PodUsage(ctx, namespace, name)
	if err != nil {
		s.logger.Debug().Err(err).Str("pod", key).Msg("failed to read pod usage")
		return defaultPodCPUMillis
	}

	millis := usage.Cpu().MilliValue()
	s.mu.Lock()
	s.podCache[key] = podSample{millis: millis, taken: s.now()}
	s.mu.Unlock()
	return millis
}

// cachedNode returns a fresh cached percentage for name, if any.
func (s *Source) cachedNode(name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cached, ok := s.nodeCache[name]
	if !ok || s.now().Sub(cached.taken) > s.ttl {
		return 0, false
	}
	return cached.percent, true
}

func (s *Source) store(name string, percent float64, estimated bool) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeCache[name] = sample{percent: percent, estimated: estimated, taken: s.now()}
	return percent
}

// refresh pulls usage for every node and repopulates the cache. A failure
// here is a complete endpoint failure and latches estimator mode.
func (s *Source) refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
	defer cancel()

	usage, err := s.client.ListNodeUsage(ctx)
	if err != nil {
		s.latchUnavailable(err)
		return err
	}
	nodes, err := s.client.ListNodes(ctx)
	if err != nil {
		return err
	}

	allocatable := make(map[string]int64, len(nodes))
	for _, node := range nodes {
		allocatable[node.Name] = node.Status.Allocatable.Cpu().MilliValue()
	}

	now := s.now()
	s.mu.Lock()
	for name, used := range usage {
		usedMillis := used.Cpu().MilliValue()
		pct := clampPercent(ratioPercent(usedMillis, allocatable[name]))
		s.nodeCache[name] = sample{percent: pct, taken: now}
	}
	s.lastRefresh = now
	s.mu.Unlock()

	s.logger.Debug().Int("nodes", len(usage)).Msg("refreshed node metrics")
	return nil
}

// nodePercents returns current percentages for all nodes, refreshing real
// metrics when stale or walking the node list in estimator mode.
func (s *Source) nodePercents() map[string]float64 {
	if s.Available() {
		s.mu.RLock()
		stale := s.now().Sub(s.lastRefresh) > s.ttl
		s.mu.RUnlock()
		if stale {
			_ = s.refresh()
		}
	}

	if s.Available() {
		s.mu.RLock()
		defer s.mu.RUnlock()
		percents := make(map[string]float64, len(s.nodeCache))
		for name, cached := range s.nodeCache {
			percents[name] = cached.percent
		}
		return percents
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
	defer cancel()
	nodes, err := s.client.ListNodes(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list nodes for estimation")
		return nil
	}

	percents := make(map[string]float64, len(nodes))
	for _, node := range nodes {
		percents[node.Name] = s.NodeCPUPercent(node.Name)
	}
	return percents
}

// estimate derives CPU from the pod count on a node. A lookup failure for a
// single node degrades to the default, not to process-wide estimator mode.
func (s *Source) estimate(name string) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), s.callTimeout)
	defer cancel()

	count, err := s.client.CountPodsOnNode(ctx, name)
	if err != nil {
		nodeLogger := log.WithNode(name)
		nodeLogger.Debug().Err(err).Msg("failed to count pods for estimate")
		return defaultCPUPercent
	}

	estimated := estimateBase + float64(count)*estimatePerPod
	if estimated > estimateCap {
		estimated = estimateCap
	}
	if estimated < 0 {
		estimated = 0
	}
	return estimated
}

func (s *Source) latchUnavailable(err error) {
	s.mu.Lock()
	wasAvailable := s.available
	s.available = false
	s.mu.Unlock()
	if wasAvailable {
		s.logger.Warn().Err(err).Msg("metrics API failed, latching estimator mode")
	}
}

func ratioPercent(used, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(used) / float64(total) * 100.0
}

func clampPercent(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
