package policy

import (
	"math"
	"sort"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"

	"github.com/shepherd-sched/shepherd/pkg/types"
)

// UCB1 exploration constant.
const explorationParam = math.Sqrt2

// Every arm is selected this many times before UCB1 ranking applies.
const minSelectionsPerArm = 2

// Reward shaping boundaries over observed CPU percent.
const (
	optimalCPULow  = 30.0
	optimalCPUHigh = 70.0
	saturatedCPU   = 90.0
)

type armStats struct {
	selections   uint64
	totalReward  float64
	lastSelected time.Time
}

// Bandit treats every node as an arm of a Multi-Armed Bandit and ranks
// candidates by UCB1 over rewards derived from observed CPU. Selection and
// reward bookkeeping are deterministic for a given sequence of candidate
// lists and CPU observations; ties go to input order.
type Bandit struct {
	mu    sync.Mutex
	arms  map[string]*armStats
	total uint64
	now   func() time.Time
}

func NewBandit() *Bandit {
	return &Bandit{
		arms: make(map[string]*armStats),
		now:  time.Now,
	}
}

func (b *Bandit) Name() types.PolicyType {
	return types.PolicyBandit
}

// Select picks an arm and immediately records its reward from the CPU
// observed at selection time, before any binding is attempted.
func (b *Bandit) Select(candidates []corev1.Node, _ *corev1.Pod, metrics Metrics) (*corev1.Node, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range candidates {
		if _, ok := b.arms[candidates[i].Name]; !ok {
			b.arms[candidates[i].Name] = &armStats{}
		}
	}

	// Exploration floor: every arm is observed at least twice before the
	// UCB1 comparison decides anything.
	chosen := -1
	for i := range candidates {
		if b.arms[candidates[i].Name].selections < minSelectionsPerArm {
			chosen = i
			break
		}
	}

	if chosen < 0 {
		bestUCB := math.Inf(-1)
		for i := range candidates {
			if ucb := b.ucb1(b.arms[candidates[i].Name]); ucb > bestUCB {
				bestUCB = ucb
				chosen = i
			}
		}
	}

	node := &candidates[chosen]
	b.record(node.Name, metrics.NodeCPUPercent(node.Name))
	return node, nil
}

func (b *Bandit) ucb1(arm *armStats) float64 {
	if arm.selections == 0 {
		return math.Inf(1)
	}
	exploitation := arm.totalReward / float64(arm.selections)
	exploration := explorationParam *
		math.Sqrt(math.Log(float64(b.total+1))/float64(arm.selections))
	return exploitation + exploration
}

// record updates the chosen arm's counters. Caller holds b.mu.
func (b *Bandit) record(name string, cpu float64) {
	arm := b.arms[name]
	arm.selections++
	arm.totalReward += Reward(cpu)
	arm.lastSelected = b.now()
	b.total++
}

// Reward maps observed CPU percent to [0,1]. Moderate utilization earns full
// reward, saturation is penalized hard, and idle nodes keep partial credit so
// exploration of them is not suppressed.
func Reward(cpu float64) float64 {
	var reward float64
	switch {
	case cpu >= optimalCPULow && cpu <= optimalCPUHigh:
		reward = 1.0
	case cpu < optimalCPULow:
		reward = 0.5 + (cpu/optimalCPULow)*0.3
	case cpu <= saturatedCPU:
		reward = 1.0 - ((cpu-optimalCPUHigh)/(saturatedCPU-optimalCPUHigh))*0.5
	default:
		reward = 0.2
	}

	if reward < 0 {
		return 0
	}
	if reward > 1 {
		return 1
	}
	return reward
}

// TotalSelections returns how many selections the bandit has made.
func (b *Bandit) TotalSelections() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Snapshot returns per-arm statistics ordered by node name, safe to call from
// a shutdown path while the loop is mid-selection.
func (b *Bandit) Snapshot() []types.ArmSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snaps := make([]types.ArmSnapshot, 0, len(b.arms))
	for name, arm := range b.arms {
		snaps = append(snaps, types.ArmSnapshot{
			Node:        name,
			Selections:  arm.selections,
			TotalReward: arm.totalReward,
		})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Node < snaps[j].Node })
	return snaps
}
