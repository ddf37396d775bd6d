/*
Package policy implements shepherd's placement policies and the adaptive
selector that switches among them.

Every policy answers the same question: given a pre-filtered, non-empty list
of candidate nodes, a pod, and a metrics snapshot, which node should host the
pod. Five policies ship:

  - FCFS: the first candidate, in input order
  - BALANCED: round-robin over candidates with a monotonic counter
  - LEAST_LOADED: the candidate with the lowest observed CPU
  - PRIORITY: least-loaded for pods labeled priority >= 5, FCFS otherwise
  - BANDIT: UCB1 over candidates, rewarding moderate CPU utilization

The bandit treats each node as an arm. Arms are forced through an exploration
floor of two selections before UCB1 ranking applies, and the reward drawn at
selection time favors the 30-70% CPU band, decays toward saturation, and
bottoms out at 0.2 above 90%.

The Selector owns the active policy handle. A cascade maps average cluster
CPU to a policy tier, and a cooldown keeps the active policy from flapping.
A fixed selector pins a single policy for comparative experiments.
*/
package policy
