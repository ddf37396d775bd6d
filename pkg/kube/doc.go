/*
Package kube is shepherd's capability layer over the Kubernetes API.

It wraps a client-go clientset and a metrics.k8s.io clientset behind the small
set of operations the scheduler needs: listing nodes, listing pending pods that
claim this scheduler, committing a placement via a Binding, and reading node
and pod usage for the metrics source. Every call is bounded by a 5 second
timeout.

Binding failures are classified into conflict (the pod is no longer pending),
forbidden (insufficient RBAC), and transient (everything else) so the
scheduling loop can treat conflicts as benign and keep running through the
rest.
*/
package kube
