package kube

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"
)

// DefaultCallTimeout bounds every API server and metrics call.
const DefaultCallTimeout = 5 * time.Second

// Interface is the narrow view of the cluster the scheduling loop needs.
type Interface interface {
	ListNodes(ctx context.Context) ([]corev1.Node, error)
	ListPendingPods(ctx context.Context, schedulerName, labelSelector string) ([]corev1.Pod, error)
	Bind(ctx context.Context, pod *corev1.Pod, nodeName string) error
}

// Client talks to the Kubernetes API server and the metrics API.
type Client struct {
	clientset   kubernetes.Interface
	metrics     metricsclient.Interface
	callTimeout time.Duration
}

// NewClient builds a client from the in-cluster service account, falling back
// to the given kubeconfig path when not running inside a cluster.
func NewClient(kubeconfig string) (*Client, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load cluster credentials: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	metrics, err := metricsclient.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics clientset: %w", err)
	}

	return &Client{
		clientset:   clientset,
		metrics:     metrics,
		callTimeout: DefaultCallTimeout,
	}, nil
}

// NewClientFromClientsets wraps existing clientsets. Used by tests.
func NewClientFromClientsets(clientset kubernetes.Interface, metrics metricsclient.Interface) *Client {
	return &Client{
		clientset:   clientset,
		metrics:     metrics,
		callTimeout: DefaultCallTimeout,
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.callTimeout)
}

// ListNodes returns every node in the cluster.
func (c *Client) ListNodes(ctx context.Context) ([]corev1.Node, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	list, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return list.Items, nil
}

// ListPendingPods returns pods across all namespaces that match labelSelector,
// claim the given scheduler name, and have no node assigned yet.
func (c *Client) ListPendingPods(ctx context.Context, schedulerName, labelSelector string) ([]corev1.Pod, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	list, err := c.clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{
		LabelSelector: labelSelector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	return FilterPending(list.Items, schedulerName), nil
}

// FilterPending keeps pods claimed by schedulerName with an empty node name.
func FilterPending(pods []corev1.Pod, schedulerName string) []corev1.Pod {
	var pending []corev1.Pod
	for _, pod := range pods {
		if pod.Spec.SchedulerName == schedulerName && pod.Spec.NodeName == "" {
			pending = append(pending, pod)
		}
	}
	return pending
}

// Bind commits the placement of pod onto nodeName by posting a Binding in the
// pod's namespace. Failures are returned as *BindError.
func (c *Client) Bind(ctx context.Context, pod *corev1.Pod, nodeName string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	binding := &corev1.Binding{
		ObjectMeta: metav1.ObjectMeta{
			Name:      pod.Name,
			Namespace: pod.Namespace,
		},
		Target: corev1.ObjectReference{
			Kind:       "Node",
			APIVersion: "v1",
			Name:       nodeName,
		},
	}

	err := c.clientset.CoreV1().Pods(pod.Namespace).Bind(ctx, binding, metav1.CreateOptions{})
	if err != nil {
		return newBindError(pod, nodeName, err)
	}
	return nil
}

// CountPodsOnNode returns how many pods currently sit on nodeName. Used by
// the CPU estimator when the metrics API is unavailable.
func (c *Client) CountPodsOnNode(ctx context.Context, nodeName string) (int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	list, err := c.clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{
		FieldSelector: "spec.nodeName=" + nodeName,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count pods on node %s: %w", nodeName, err)
	}
	return len(list.Items), nil
}

// ListNodeUsage returns the current resource usage of every node as reported
// by the metrics API (metrics.k8s.io/v1beta1).
func (c *Client) ListNodeUsage(ctx context.Context) (map[string]corev1.ResourceList, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	list, err := c.metrics.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list node metrics: %w", err)
	}

	usage := make(map[string]corev1.ResourceList, len(list.Items))
	for _, item := range list.Items {
		usage[item.Name] = item.Usage
	}
	return usage, nil
}

// PodUsage returns the aggregate container usage of one pod.
func (c *Client) PodUsage(ctx context.Context, namespace, name string) (corev1.ResourceList, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	item, err := c.metrics.MetricsV1beta1().PodMetricses(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get pod metrics for %s/%s: %w", namespace, name, err)
	}

	total := corev1.ResourceList{}
	for _, container := range item.Containers {
		for res, qty := range container.Usage {
			sum := total[res]
			sum.Add(qty)
			total[res] = sum
		}
	}
	return total, nil
}
