package policy

import (
	"fmt"
	"time"

	"github.com/shepherd-sched/shepherd/pkg/types"
)

// Cascade maps average cluster CPU to a policy: Low and below picks LowPolicy,
// up to High picks MidPolicy, above High picks HighPolicy.
type Cascade struct {
	Name       string
	Low        float64
	High       float64
	LowPolicy  types.PolicyType
	MidPolicy  types.PolicyType
	HighPolicy types.PolicyType
}

// BalancedCascade is the default operational envelope: round-robin in the
// middle band, least-loaded at the top.
func BalancedCascade(low, high float64) Cascade {
	return Cascade{
		Name:       "balanced",
		Low:        low,
		High:       high,
		LowPolicy:  types.PolicyFCFS,
		MidPolicy:  types.PolicyBalanced,
		HighPolicy: types.PolicyLeastLoaded,
	}
}

// BanditCascade escalates to the UCB1 bandit under high load, with
// least-loaded in the middle band.
func BanditCascade(low, high float64) Cascade {
	return Cascade{
		Name:       "bandit",
		Low:        low,
		High:       high,
		LowPolicy:  types.PolicyFCFS,
		MidPolicy:  types.PolicyLeastLoaded,
		HighPolicy: types.PolicyBandit,
	}
}

// PolicyFor maps an average cluster CPU percentage to the cascade's policy.
func (c Cascade) PolicyFor(clusterCPU float64) types.PolicyType {
	switch {
	case clusterCPU > c.High:
		return c.HighPolicy
	case clusterCPU > c.Low:
		return c.MidPolicy
	default:
		return c.LowPolicy
	}
}

// Selector owns the active policy handle. In adaptive mode it re-evaluates
// the cascade once per loop iteration under a cooldown; in fixed mode the
// policy set at construction never changes.
type Selector struct {
	registry   Registry
	cascade    Cascade
	cooldown   time.Duration
	fixed      bool
	active     types.PolicyType
	lastSwitch time.Time
	now        func() time.Time
}

// NewSelector returns an adaptive selector starting on the cascade's low
// policy. The cooldown clock starts at construction.
func NewSelector(registry Registry, cascade Cascade, cooldown time.Duration) *Selector {
	s := &Selector{
		registry: registry,
		cascade:  cascade,
		cooldown: cooldown,
		active:   cascade.LowPolicy,
		now:      time.Now,
	}
	s.lastSwitch = s.now()
	return s
}

// NewFixedSelector pins one policy for the process lifetime.
func NewFixedSelector(registry Registry, policy types.PolicyType) (*Selector, error) {
	if _, ok := registry[policy]; !ok {
		return nil, fmt.Errorf("fixed policy %s is not registered", policy)
	}
	return &Selector{
		registry: registry,
		fixed:    true,
		active:   policy,
		now:      time.Now,
	}, nil
}

// Fixed reports whether the selector is pinned to one policy.
func (s *Selector) Fixed() bool {
	return s.fixed
}

// ActiveType returns the tag of the active policy.
func (s *Selector) ActiveType() types.PolicyType {
	return s.active
}

// Active returns the active policy instance.
func (s *Selector) Active() Policy {
	return s.registry[s.active]
}

// Evaluate applies the cascade to the current average cluster CPU and commits
// a switch when the mapped policy differs from the active one. It returns the
// switch event, or nil when nothing changed. Within the cooldown window it
// does nothing.
func (s *Selector) Evaluate(metrics Metrics) *types.StrategySwitch {
	if s.fixed {
		return nil
	}

	now := s.now()
	if now.Sub(s.lastSwitch) < s.cooldown {
		return nil
	}

	clusterCPU := metrics.ClusterCPUPercent()
	next := s.cascade.PolicyFor(clusterCPU)
	if next == s.active {
		return nil
	}

	event := &types.StrategySwitch{
		From:       s.active,
		To:         next,
		ClusterCPU: clusterCPU,
		Timestamp:  now,
	}
	s.active = next
	s.lastSwitch = now
	return event
}
