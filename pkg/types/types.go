package types

import (
	"fmt"
	"strings"
	"time"
)

// PolicyType identifies a placement policy.
type PolicyType string

const (
	PolicyFCFS        PolicyType = "FCFS"
	PolicyBalanced    PolicyType = "BALANCED"
	PolicyLeastLoaded PolicyType = "LEAST_LOADED"
	PolicyPriority    PolicyType = "PRIORITY"
	PolicyBandit      PolicyType = "BANDIT"
)

// ParsePolicyType parses a policy name (case-insensitive).
func ParsePolicyType(s string) (PolicyType, error) {
	switch PolicyType(strings.ToUpper(strings.TrimSpace(s))) {
	case PolicyFCFS:
		return PolicyFCFS, nil
	case PolicyBalanced:
		return PolicyBalanced, nil
	case PolicyLeastLoaded:
		return PolicyLeastLoaded, nil
	case PolicyPriority:
		return PolicyPriority, nil
	case PolicyBandit:
		return PolicyBandit, nil
	}
	return "", fmt.Errorf("unknown policy %q", s)
}

// Decision records a committed pod placement. Entries are append-only and
// written only after the binding succeeded against the API server.
type Decision struct {
	ID        string
	Pod       string
	Namespace string
	Node      string
	Policy    PolicyType
	NodeCPU   float64 // percent observed at decision time
	Estimated bool    // CPU came from the estimator, not the metrics API
	Timestamp time.Time
}

// StrategySwitch records a change of the active policy.
type StrategySwitch struct {
	From       PolicyType
	To         PolicyType
	ClusterCPU float64
	Timestamp  time.Time
}

// ArmSnapshot is a point-in-time view of one bandit arm.
type ArmSnapshot struct {
	Node        string
	Selections  uint64
	TotalReward float64
}

// AverageReward is TotalReward / Selections, 0 when the arm was never picked.
func (a ArmSnapshot) AverageReward() float64 {
	if a.Selections == 0 {
		return 0
	}
	return a.TotalReward / float64(a.Selections)
}
