package history

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shepherd-sched/shepherd/pkg/types"
)

// Log is the append-only record of placements and strategy switches.
// The scheduling loop is the only writer; readers get consistent snapshots.
type Log struct {
	mu        sync.RWMutex
	decisions []types.Decision
	switches  []types.StrategySwitch
}

func NewLog() *Log {
	return &Log{}
}

// Append records a placement decision. Called only after the binding was
// confirmed by the API server.
func (l *Log) Append(d types.Decision) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decisions = append(l.decisions, d)
}

// RecordSwitch records a strategy switch event.
func (l *Log) RecordSwitch(s types.StrategySwitch) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.switches = append(l.switches, s)
}

// Decisions returns a snapshot of all recorded decisions.
func (l *Log) Decisions() []types.Decision {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.Decision, len(l.decisions))
	copy(out, l.decisions)
	return out
}

// Switches returns a snapshot of all strategy switches.
func (l *Log) Switches() []types.StrategySwitch {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.StrategySwitch, len(l.switches))
	copy(out, l.switches)
	return out
}

// Summary aggregates the decision log for inspection.
type Summary struct {
	Total    int
	ByPolicy map[types.PolicyType]int
	ByNode   map[string]int
	Switches int
}

// Summarize groups the log by policy and node.
func (l *Log) Summarize() Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Summary{
		Total:    len(l.decisions),
		ByPolicy: make(map[types.PolicyType]int),
		ByNode:   make(map[string]int),
		Switches: len(l.switches),
	}
	for _, d := range l.decisions {
		s.ByPolicy[d.Policy]++
		s.ByNode[d.Node]++
	}
	return s
}

// Format renders the shutdown statistics block. Bandit arm statistics are
// included when the bandit made at least one selection.
func Format(s Summary, arms []types.ArmSnapshot) string {
	var b strings.Builder
	b.WriteString("========================================\n")
	b.WriteString("     SCHEDULING STATISTICS\n")
	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "Total Pods Scheduled: %d\n", s.Total)
	fmt.Fprintf(&b, "Strategy Switches: %d\n", s.Switches)

	if s.Total > 0 {
		b.WriteString("\nDistribution by Strategy:\n")
		for _, policy := range sortedPolicies(s.ByPolicy) {
			count := s.ByPolicy[policy]
			fmt.Fprintf(&b, "  %s: %d (%.1f%%)\n",
				policy, count, float64(count)*100.0/float64(s.Total))
		}

		b.WriteString("\nDistribution by Node:\n")
		for _, node := range sortedNodes(s.ByNode) {
			fmt.Fprintf(&b, "  %s: %d\n", node, s.ByNode[node])
		}
	}

	if banditActive(arms) {
		b.WriteString("\nBandit Arm Statistics:\n")
		for _, arm := range arms {
			fmt.Fprintf(&b, "  %s: n=%d R=%.4f avg=%.4f\n",
				arm.Node, arm.Selections, arm.TotalReward, arm.AverageReward())
		}
	}

	b.WriteString("========================================")
	return b.String()
}

func banditActive(arms []types.ArmSnapshot) bool {
	for _, arm := range arms {
		if arm.Selections > 0 {
			return true
		}
	}
	return false
}

func sortedPolicies(byPolicy map[types.PolicyType]int) []types.PolicyType {
	policies := make([]types.PolicyType, 0, len(byPolicy))
	for policy := range byPolicy {
		policies = append(policies, policy)
	}
	sort.Slice(policies, func(i, j int) bool { return policies[i] < policies[j] })
	return policies
}

func sortedNodes(byNode map[string]int) []string {
	nodes := make([]string, 0, len(byNode))
	for node := range byNode {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}
