/*
Package clustermetrics feeds placement decisions with per-node CPU usage.

The source reads node usage from the metrics API (metrics.k8s.io/v1beta1),
converts each node's CPU to a percentage of its allocatable capacity, and
caches samples per node for a short TTL so a burst of placement decisions in
one scheduling pass shares a single network round trip.

When the metrics API is unreachable the source degrades instead of failing:
a probe at startup (or a later complete endpoint failure) latches estimator
mode for the rest of the process, where a node's CPU is approximated from its
pod count as clamp(15 + 8*pods, 0, 90). A lookup failure for a single node
only affects that node. Callers can check Available to annotate their output
as real or estimated.

Quantity strings from the cluster use Kubernetes suffixes; ParseCPUMillis and
ParseMemoryBytes centralize the conversion with an explicit zero-on-failure
mode.
*/
package clustermetrics
