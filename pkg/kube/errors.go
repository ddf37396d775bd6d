package kube

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// BindReason classifies a failed binding attempt.
type BindReason string

const (
	// BindConflict means the pod is no longer pending; another actor or a
	// prior iteration already placed it.
	BindConflict BindReason = "conflict"
	// BindForbidden means the scheduler's credentials do not allow bindings.
	BindForbidden BindReason = "forbidden"
	// BindTransient covers everything else (timeouts, server errors).
	BindTransient BindReason = "transient"
)

// BindError reports a failed binding with its classification and the upstream
// status payload when one is available.
type BindError struct {
	Pod       string
	Namespace string
	Node      string
	Reason    BindReason
	Status    string
	Err       error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s/%s to %s: %s: %v", e.Namespace, e.Pod, e.Node, e.Reason, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is a binding conflict.
func IsConflict(err error) bool {
	be, ok := err.(*BindError)
	return ok && be.Reason == BindConflict
}

func newBindError(pod *corev1.Pod, nodeName string, err error) *BindError {
	be := &BindError{
		Pod:       pod.Name,
		Namespace: pod.Namespace,
		Node:      nodeName,
		Reason:    BindTransient,
		Err:       err,
	}

	switch {
	case apierrors.IsConflict(err), apierrors.IsAlreadyExists(err):
		be.Reason = BindConflict
	case apierrors.IsForbidden(err):
		be.Reason = BindForbidden
	}

	// Keep the upstream status message for operator-facing logs.
	if statusErr, ok := err.(apierrors.APIStatus); ok {
		be.Status = statusErr.Status().Message
	}
	return be
}
