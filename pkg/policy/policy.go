package policy

import (
	"errors"

	corev1 "k8s.io/api/core/v1"

	"github.com/shepherd-sched/shepherd/pkg/types"
)

// ErrNoCandidates is returned when a policy is asked to choose from an empty
// candidate list. The loop never attempts a binding in that case.
var ErrNoCandidates = errors.New("no suitable node: empty candidate list")

// Metrics is the view of cluster load a policy may consult.
type Metrics interface {
	NodeCPUPercent(name string) float64
	ClusterCPUPercent() float64
	Available() bool
}

// Policy selects one node from a pre-filtered candidate list for a pod.
// Implementations may keep internal state (the round-robin counter, the
// bandit arm table) but candidates are never mutated.
type Policy interface {
	Name() types.PolicyType
	Select(candidates []corev1.Node, pod *corev1.Pod, metrics Metrics) (*corev1.Node, error)
}

// Registry holds one instance of every policy for the process lifetime, so
// per-policy state survives strategy switches.
type Registry map[types.PolicyType]Policy

// NewRegistry builds the full policy set.
func NewRegistry() Registry {
	return Registry{
		types.PolicyFCFS:        NewFirstAvailable(),
		types.PolicyBalanced:    NewRoundRobin(),
		types.PolicyLeastLoaded: NewLeastCPU(),
		types.PolicyPriority:    NewPriority(),
		types.PolicyBandit:      NewBandit(),
	}
}

// Bandit returns the registry's bandit instance for statistics dumps.
func (r Registry) Bandit() *Bandit {
	if p, ok := r[types.PolicyBandit]; ok {
		if b, ok := p.(*Bandit); ok {
			return b
		}
	}
	return nil
}
