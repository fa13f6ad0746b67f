package resource

//go:generate mockgen -source=./facade.go -destination=./mock/facade_generated.go -package=mock

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	hivev1 "github.com/openshift/hive/apis/hive/v1"
)

// Kind identifies one of the resource kinds the claims manager works with.
type Kind string

const (
	ClusterPoolKind       Kind = "ClusterPool"
	ClusterClaimKind      Kind = "ClusterClaim"
	ClusterDeploymentKind Kind = "ClusterDeployment"
	SecretKind            Kind = "Secret"
)

// Kinds lists every kind served by a Facade.
var Kinds = []Kind{ClusterPoolKind, ClusterClaimKind, ClusterDeploymentKind, SecretKind}

// GroupVersionKind returns the API type backing the kind.
func (k Kind) GroupVersionKind() schema.GroupVersionKind {
	if k == SecretKind {
		return corev1.SchemeGroupVersion.WithKind(string(k))
	}
	return hivev1.SchemeGroupVersion.WithKind(string(k))
}

func (k Kind) String() string {
	return string(k)
}

// Facade is the uniform access layer to the resource API. Implementations must be safe for
// concurrent use.
type Facade interface {
	// List returns every object of the given kind in the namespace.
	List(ctx context.Context, kind Kind, namespace string) ([]unstructured.Unstructured, error)

	// Get returns the named object. A missing object is reported with an error for which
	// k8s.io/apimachinery/pkg/api/errors.IsNotFound is true.
	Get(ctx context.Context, kind Kind, name, namespace string) (*unstructured.Unstructured, error)

	// Create creates the object. The object's type is set from kind.
	Create(ctx context.Context, kind Kind, obj *unstructured.Unstructured) error

	// Delete deletes the named object and returns once the API server acknowledged the request.
	Delete(ctx context.Context, kind Kind, name, namespace string) error
}
