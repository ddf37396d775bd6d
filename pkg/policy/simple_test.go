package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/shepherd-sched/shepherd/pkg/types"
)

// fakeMetrics serves canned CPU percentages for tests
type fakeMetrics struct {
	nodeCPU    map[string]float64
	clusterCPU float64
	available  bool
}

func (m *fakeMetrics) NodeCPUPercent(name string) float64 {
	if cpu, ok := m.nodeCPU[name]; ok {
		return cpu
	}
	return 50.0
}

func (m *fakeMetrics) ClusterCPUPercent() float64 {
	return m.clusterCPU
}

func (m *fakeMetrics) Available() bool {
	return m.available
}

func makeNodes(names ...string) []corev1.Node {
	nodes := make([]corev1.Node, 0, len(names))
	for _, name := range names {
		nodes = append(nodes, corev1.Node{
			ObjectMeta: metav1.ObjectMeta{Name: name},
		})
	}
	return nodes
}

func makePod(name string, labels map[string]string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Labels: labels},
	}
}

// TestEmptyCandidates verifies every policy signals no suitable node for an
// empty candidate list
func TestEmptyCandidates(t *testing.T) {
	metrics := &fakeMetrics{available: true}
	pod := makePod("pod-1", nil)

	for name, p := range NewRegistry() {
		t.Run(string(name), func(t *testing.T) {
			node, err := p.Select(nil, pod, metrics)
			assert.Nil(t, node)
			assert.ErrorIs(t, err, ErrNoCandidates)
		})
	}
}

// TestSingleCandidate verifies every policy returns the only candidate
func TestSingleCandidate(t *testing.T) {
	metrics := &fakeMetrics{available: true}
	pod := makePod("pod-1", nil)
	candidates := makeNodes("only")

	for name, p := range NewRegistry() {
		t.Run(string(name), func(t *testing.T) {
			node, err := p.Select(candidates, pod, metrics)
			require.NoError(t, err)
			assert.Equal(t, "only", node.Name)
		})
	}
}

// TestFirstAvailable tests first-candidate selection
func TestFirstAvailable(t *testing.T) {
	p := NewFirstAvailable()
	metrics := &fakeMetrics{available: true}
	candidates := makeNodes("n1", "n2", "n3")

	for i := 0; i < 5; i++ {
		node, err := p.Select(candidates, makePod("pod", nil), metrics)
		require.NoError(t, err)
		assert.Equal(t, "n1", node.Name)
	}
}

// TestRoundRobinDistribution verifies each of k candidates is selected
// exactly m times over m*k invocations with stable input order
func TestRoundRobinDistribution(t *testing.T) {
	p := NewRoundRobin()
	metrics := &fakeMetrics{available: true}
	candidates := makeNodes("a", "b", "c")

	const m = 4
	counts := make(map[string]int)
	var order []string
	for i := 0; i < m*len(candidates); i++ {
		node, err := p.Select(candidates, makePod("pod", nil), metrics)
		require.NoError(t, err)
		counts[node.Name]++
		order = append(order, node.Name)
	}

	assert.Equal(t, map[string]int{"a": m, "b": m, "c": m}, counts)
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, order[:6])
}

// TestRoundRobinCounterSurvivesCandidateChanges tests the counter is
// monotonic even when the candidate set shrinks
func TestRoundRobinCounterSurvivesCandidateChanges(t *testing.T) {
	p := NewRoundRobin()
	metrics := &fakeMetrics{available: true}

	node, err := p.Select(makeNodes("a", "b", "c"), makePod("pod", nil), metrics)
	require.NoError(t, err)
	assert.Equal(t, "a", node.Name)

	// counter is now 1; over two candidates that lands on index 1
	node, err = p.Select(makeNodes("a", "b"), makePod("pod", nil), metrics)
	require.NoError(t, err)
	assert.Equal(t, "b", node.Name)
}

// TestLeastCPU tests minimum-CPU selection with input-order tie-break
func TestLeastCPU(t *testing.T) {
	tests := []struct {
		name     string
		nodeCPU  map[string]float64
		expected string
	}{
		{
			name:     "clear minimum",
			nodeCPU:  map[string]float64{"n1": 80, "n2": 20, "n3": 50},
			expected: "n2",
		},
		{
			name:     "tie goes to input order",
			nodeCPU:  map[string]float64{"n1": 30, "n2": 30, "n3": 30},
			expected: "n1",
		},
		{
			name:     "minimum at the end",
			nodeCPU:  map[string]float64{"n1": 60, "n2": 50, "n3": 10},
			expected: "n3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLeastCPU()
			metrics := &fakeMetrics{nodeCPU: tt.nodeCPU, available: true}
			node, err := p.Select(makeNodes("n1", "n2", "n3"), makePod("pod", nil), metrics)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, node.Name)
		})
	}
}

// TestPriority tests delegation based on the priority label
func TestPriority(t *testing.T) {
	metrics := &fakeMetrics{
		nodeCPU:   map[string]float64{"n1": 80, "n2": 20},
		available: true,
	}
	candidates := makeNodes("n1", "n2")

	tests := []struct {
		name     string
		labels   map[string]string
		expected string
	}{
		{
			name:     "high priority goes to least loaded",
			labels:   map[string]string{"priority": "7"},
			expected: "n2",
		},
		{
			name:     "boundary priority 5 goes to least loaded",
			labels:   map[string]string{"priority": "5"},
			expected: "n2",
		},
		{
			name:     "low priority goes to first available",
			labels:   map[string]string{"priority": "2"},
			expected: "n1",
		},
		{
			name:     "missing label defaults low",
			labels:   nil,
			expected: "n1",
		},
		{
			name:     "unparseable label defaults low",
			labels:   map[string]string{"priority": "high"},
			expected: "n1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPriority()
			node, err := p.Select(candidates, makePod("pod", tt.labels), metrics)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, node.Name)
		})
	}
}

// TestPodPriority tests the label lookup and its default
func TestPodPriority(t *testing.T) {
	assert.Equal(t, 1, PodPriority(nil))
	assert.Equal(t, 1, PodPriority(makePod("p", nil)))
	assert.Equal(t, 1, PodPriority(makePod("p", map[string]string{"priority": "abc"})))
	assert.Equal(t, 9, PodPriority(makePod("p", map[string]string{"priority": "9"})))
	assert.Equal(t, -2, PodPriority(makePod("p", map[string]string{"priority": "-2"})))
}

// TestRegistry tests that every policy tag is registered
func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	for _, tag := range []types.PolicyType{
		types.PolicyFCFS,
		types.PolicyBalanced,
		types.PolicyLeastLoaded,
		types.PolicyPriority,
		types.PolicyBandit,
	} {
		p, ok := registry[tag]
		require.True(t, ok, "policy %s not registered", tag)
		assert.Equal(t, tag, p.Name())
	}

	assert.NotNil(t, registry.Bandit())
}
