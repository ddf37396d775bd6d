/*
Package history keeps the in-memory record of what the scheduler did.

The log is append-only: a decision enters it only after the orchestrator
confirmed the binding, and strategy switches are recorded as they happen.
Nothing in the control loop reads the log back; it exists for the statistics
block emitted on shutdown and for post-hoc inspection. All state is lost on
restart by design.
*/
package history
