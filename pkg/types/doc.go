/*
Package types defines the shared data model of the shepherd scheduler.

It holds the policy identifiers, the decision and strategy-switch records kept
by the history log, and the bandit arm snapshots used for shutdown statistics.
Kubernetes objects (nodes, pods, bindings) are used directly from k8s.io/api
and are deliberately not mirrored here.
*/
package types
