package clustermetrics

import (
	"github.com/shepherd-sched/shepherd/pkg/log"
	"k8s.io/apimachinery/pkg/api/resource"
)

// ParseCPUMillis converts a Kubernetes CPU quantity string to millicores.
// Accepted forms: "1000000000n" (nanocores), "500m" (millicores), "1" (cores).
// A value that does not parse counts as 0 and is logged once per occurrence.
func ParseCPUMillis(s string) int64 {
	if s == "" {
		return 0
	}
	qty, err := resource.ParseQuantity(s)
	if err != nil {
		log.Logger.Warn().Str("quantity", s).Err(err).Msg("failed to parse CPU quantity")
		return 0
	}
	return qty.MilliValue()
}

// ParseMemoryBytes converts a Kubernetes memory quantity string to bytes.
// Accepted forms: plain bytes and the binary suffixes Ki, Mi, Gi, Ti.
// A value that does not parse counts as 0 and is logged once per occurrence.
func ParseMemoryBytes(s string) int64 {
	if s == "" {
		return 0
	}
	qty, err := resource.ParseQuantity(s)
	if err != nil {
		log.Logger.Warn().Str("quantity", s).Err(err).Msg("failed to parse memory quantity")
		return 0
	}
	return qty.Value()
}
