package resource

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/util/retry"

	crclient "sigs.k8s.io/controller-runtime/pkg/client"

	hivev1 "github.com/openshift/hive/apis/hive/v1"
)

// TransientBackoff is used to retry reads which failed with a transient API error.
var TransientBackoff = wait.Backoff{
	Steps:    3,
	Duration: 100 * time.Millisecond,
	Factor:   2.0,
	Jitter:   0.1,
}

type client struct {
	c       crclient.Client
	backoff wait.Backoff
	logger  log.FieldLogger
}

// New returns a Facade backed by the given controller-runtime client. Objects are exchanged in
// their unstructured form and converted to the Hive API types by the caller.
func New(c crclient.Client, logger log.FieldLogger) Facade {
	return &client{
		c:       c,
		backoff: TransientBackoff,
		logger:  logger,
	}
}

// NewScheme returns a scheme knowing the core and Hive API types served by a Facade.
func NewScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	utilruntime.Must(corev1.AddToScheme(scheme))
	utilruntime.Must(hivev1.AddToScheme(scheme))
	return scheme
}

// NewForConfig builds a controller-runtime client for cfg, wraps its transport with request
// metrics and returns a Facade around it.
func NewForConfig(cfg *rest.Config, component string, logger log.FieldLogger) (Facade, error) {
	// Copy the rest config as the transport wrapper is component specific.
	cfg = rest.CopyConfig(cfg)
	AddMetricsTransportWrapper(cfg, component)
	c, err := crclient.New(cfg, crclient.Options{Scheme: NewScheme()})
	if err != nil {
		return nil, errors.Wrap(err, "could not create kube client")
	}
	return New(c, logger), nil
}

func (r *client) List(ctx context.Context, kind Kind, namespace string) ([]unstructured.Unstructured, error) {
	gvk := kind.GroupVersionKind()
	list := &unstructured.UnstructuredList{}
	list.SetGroupVersionKind(gvk.GroupVersion().WithKind(gvk.Kind + "List"))
	err := r.retryTransient(kind, func() error {
		return r.c.List(ctx, list, crclient.InNamespace(namespace))
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not list %s in namespace %s", kind, namespace)
	}
	return list.Items, nil
}

func (r *client) Get(ctx context.Context, kind Kind, name, namespace string) (*unstructured.Unstructured, error) {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(kind.GroupVersionKind())
	err := r.retryTransient(kind, func() error {
		return r.c.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, obj)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not get %s %s/%s", kind, namespace, name)
	}
	return obj, nil
}

func (r *client) Create(ctx context.Context, kind Kind, obj *unstructured.Unstructured) error {
	obj.SetGroupVersionKind(kind.GroupVersionKind())
	if err := r.c.Create(ctx, obj); err != nil {
		return errors.Wrapf(err, "could not create %s %s/%s", kind, obj.GetNamespace(), obj.GetName())
	}
	r.logger.WithField("kind", kind).WithField("name", obj.GetName()).Debug("created object")
	return nil
}

func (r *client) Delete(ctx context.Context, kind Kind, name, namespace string) error {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(kind.GroupVersionKind())
	obj.SetNamespace(namespace)
	obj.SetName(name)
	if err := r.c.Delete(ctx, obj, crclient.PropagationPolicy(metav1.DeletePropagationBackground)); err != nil {
		return errors.Wrapf(err, "could not delete %s %s/%s", kind, namespace, name)
	}
	r.logger.WithField("kind", kind).WithField("name", name).Debug("deleted object")
	return nil
}

func (r *client) retryTransient(kind Kind, fn func() error) error {
	attempt := 0
	return retry.OnError(r.backoff, IsTransient, func() error {
		attempt++
		err := fn()
		if err != nil && IsTransient(err) {
			r.logger.WithError(err).WithField("kind", kind).WithField("attempt", attempt).Debug("transient API error")
		}
		return err
	})
}

// IsTransient returns true for API errors that are expected to go away on their own.
func IsTransient(err error) bool {
	return apierrors.IsServerTimeout(err) ||
		apierrors.IsTimeout(err) ||
		apierrors.IsTooManyRequests(err) ||
		apierrors.IsServiceUnavailable(err) ||
		apierrors.IsInternalError(err)
}
