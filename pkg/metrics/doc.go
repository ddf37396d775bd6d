/*
Package metrics exposes shepherd's operational metrics and health endpoints.

Prometheus collectors cover the scheduling surface: committed placements by
policy, binding failures by reason, strategy switches, pending pod counts,
per-pod scheduling latency, and the observed node and cluster CPU mirrored
from the metrics source. Counters are fed by an event-broker observer rather
than by the control loop; the loop itself sets only the pending-pods gauge and
the latency histogram. The CPU and metrics-availability gauges are refreshed
by a periodic collector.

The package also carries the process health checker behind /healthz and
/readyz. Readiness requires the kube client and the scheduler loop to have
registered healthy.
*/
package metrics
