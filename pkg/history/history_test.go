package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shepherd-sched/shepherd/pkg/types"
)

func decision(pod, node string, policy types.PolicyType) types.Decision {
	return types.Decision{
		ID:        pod + "-id",
		Pod:       pod,
		Namespace: "default",
		Node:      node,
		Policy:    policy,
		NodeCPU:   42.0,
		Timestamp: time.Now(),
	}
}

// TestAppendAndSnapshot tests the append-only log and snapshot isolation
func TestAppendAndSnapshot(t *testing.T) {
	log := NewLog()
	assert.Empty(t, log.Decisions())

	log.Append(decision("tm-1", "n1", types.PolicyFCFS))
	log.Append(decision("tm-2", "n2", types.PolicyFCFS))

	snapshot := log.Decisions()
	require.Len(t, snapshot, 2)

	// Mutating the snapshot must not touch the log
	snapshot[0].Pod = "mutated"
	assert.Equal(t, "tm-1", log.Decisions()[0].Pod)
}

// TestSummarize tests grouping by policy and node
func TestSummarize(t *testing.T) {
	log := NewLog()
	log.Append(decision("tm-1", "n1", types.PolicyFCFS))
	log.Append(decision("tm-2", "n1", types.PolicyFCFS))
	log.Append(decision("tm-3", "n2", types.PolicyLeastLoaded))
	log.Append(decision("tm-4", "n3", types.PolicyBandit))
	log.RecordSwitch(types.StrategySwitch{
		From: types.PolicyFCFS, To: types.PolicyLeastLoaded, ClusterCPU: 55,
	})

	summary := log.Summarize()
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Switches)
	assert.Equal(t, 2, summary.ByPolicy[types.PolicyFCFS])
	assert.Equal(t, 1, summary.ByPolicy[types.PolicyLeastLoaded])
	assert.Equal(t, 1, summary.ByPolicy[types.PolicyBandit])
	assert.Equal(t, 2, summary.ByNode["n1"])
	assert.Equal(t, 1, summary.ByNode["n2"])
}

// TestFormat tests the shutdown statistics block rendering
func TestFormat(t *testing.T) {
	log := NewLog()
	log.Append(decision("tm-1", "n1", types.PolicyFCFS))
	log.Append(decision("tm-2", "n2", types.PolicyBandit))

	arms := []types.ArmSnapshot{
		{Node: "n1", Selections: 0, TotalReward: 0},
		{Node: "n2", Selections: 4, TotalReward: 3.2},
	}

	out := Format(log.Summarize(), arms)
	assert.Contains(t, out, "Total Pods Scheduled: 2")
	assert.Contains(t, out, "FCFS: 1 (50.0%)")
	assert.Contains(t, out, "BANDIT: 1 (50.0%)")
	assert.Contains(t, out, "n2: n=4 R=3.2000 avg=0.8000")
}

// TestFormatWithoutBandit verifies the arm block is omitted when the bandit
// never selected
func TestFormatWithoutBandit(t *testing.T) {
	log := NewLog()
	log.Append(decision("tm-1", "n1", types.PolicyFCFS))

	out := Format(log.Summarize(), []types.ArmSnapshot{
		{Node: "n1", Selections: 0, TotalReward: 0},
	})
	assert.NotContains(t, out, "Bandit Arm Statistics")
}

// TestFormatEmpty tests rendering with no decisions at all
func TestFormatEmpty(t *testing.T) {
	log := NewLog()
	out := Format(log.Summarize(), nil)
	assert.Contains(t, out, "Total Pods Scheduled: 0")
	assert.NotContains(t, out, "Distribution by Strategy")
}

// TestSwitchesSnapshot tests switch recording
func TestSwitchesSnapshot(t *testing.T) {
	log := NewLog()
	log.RecordSwitch(types.StrategySwitch{From: types.PolicyFCFS, To: types.PolicyBalanced})
	log.RecordSwitch(types.StrategySwitch{From: types.PolicyBalanced, To: types.PolicyLeastLoaded})

	switches := log.Switches()
	require.Len(t, switches, 2)
	assert.Equal(t, types.PolicyBalanced, switches[0].To)
	assert.Equal(t, types.PolicyLeastLoaded, switches[1].To)
}
