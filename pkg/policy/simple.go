package policy

import (
	"strconv"

	corev1 "k8s.io/api/core/v1"

	"github.com/shepherd-sched/shepherd/pkg/types"
)

// priorityLabel is the pod label carrying an integer priority.
const priorityLabel = "priority"

// highPriorityThreshold separates pods that get load-aware placement.
const highPriorityThreshold = 5

// FirstAvailable returns the first candidate. Cheapest possible policy, used
// while the cluster is mostly idle.
type FirstAvailable struct{}

func NewFirstAvailable() *FirstAvailable {
	return &FirstAvailable{}
}

func (p *FirstAvailable) Name() types.PolicyType {
	return types.PolicyFCFS
}

func (p *FirstAvailable) Select(candidates []corev1.Node, _ *corev1.Pod, _ Metrics) (*corev1.Node, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	return &candidates[0], nil
}

// RoundRobin spreads pods evenly across candidates with a monotonic counter.
// The counter belongs to the instance and is never reset across strategy
// switches.
type RoundRobin struct {
	counter uint64
}

func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

func (p *RoundRobin) Name() types.PolicyType {
	return types.PolicyBalanced
}

func (p *RoundRobin) Select(candidates []corev1.Node, _ *corev1.Pod, _ Metrics) (*corev1.Node, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	index := p.counter % uint64(len(candidates))
	p.counter++
	return &candidates[index], nil
}

// LeastCPU picks the candidate with the lowest observed CPU, first wins on a
// tie.
type LeastCPU struct{}

func NewLeastCPU() *LeastCPU {
	return &LeastCPU{}
}

func (p *LeastCPU) Name() types.PolicyType {
	return types.PolicyLeastLoaded
}

func (p *LeastCPU) Select(candidates []corev1.Node, _ *corev1.Pod, metrics Metrics) (*corev1.Node, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	best := 0
	bestCPU := metrics.NodeCPUPercent(candidates[0].Name)
	for i := 1; i < len(candidates); i++ {
		cpu := metrics.NodeCPUPercent(candidates[i].Name)
		if cpu < bestCPU {
			best = i
			bestCPU = cpu
		}
	}
	return &candidates[best], nil
}

// Priority places high-priority pods (label priority >= 5) on the least
// loaded node and everything else on the first available one.
type Priority struct {
	leastCPU       *LeastCPU
	firstAvailable *FirstAvailable
}

func NewPriority() *Priority {
	return &Priority{
		leastCPU:       NewLeastCPU(),
		firstAvailable: NewFirstAvailable(),
	}
}

func (p *Priority) Name() types.PolicyType {
	return types.PolicyPriority
}

func (p *Priority) Select(candidates []corev1.Node, pod *corev1.Pod, metrics Metrics) (*corev1.Node, error) {
	if PodPriority(pod) >= highPriorityThreshold {
		return p.leastCPU.Select(candidates, pod, metrics)
	}
	return p.firstAvailable.Select(candidates, pod, metrics)
}

// PodPriority reads the integer priority label from a pod, defaulting to 1
// when the label is absent or unparseable.
func PodPriority(pod *corev1.Pod) int {
	if pod == nil {
		return 1
	}
	raw, ok := pod.Labels[priorityLabel]
	if !ok {
		return 1
	}
	priority, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return priority
}
