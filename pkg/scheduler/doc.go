/*
Package scheduler drives shepherd's control loop.

Each pass discovers pending pods that claim this scheduler (scheduler name
plus component label, nothing else is ever touched), filters cluster nodes
down to Ready, untainted candidates, asks the active placement policy for a
node, and commits the placement by posting a Binding. Successful placements
are appended to the history log and published on the event broker; binding
conflicts are dropped silently because another actor already placed the pod;
every other failure is logged and the pass continues.

After the pod pass the adaptive selector re-evaluates its threshold cascade
against average cluster CPU, unless a fixed policy pins it.

The loop is a single task. It sleeps for the poll interval between passes and
backs off longer after a failed pass, so transient API server trouble can
never crash the process. Stop waits for the in-flight pass, keeping shutdown
statistics consistent with the last committed binding.
*/
package scheduler
