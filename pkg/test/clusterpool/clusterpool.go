package clusterpool

import (
	hivev1 "github.com/openshift/hive/apis/hive/v1"

	"github.com/openshift/hive-claims-manager/pkg/test/generic"
)

// Option defines a function signature for any function that wants to be passed into Build
type Option func(*hivev1.ClusterPool)

// Build runs each of the functions passed in to generate the object.
func Build(opts ...Option) *hivev1.ClusterPool {
	retval := &hivev1.ClusterPool{}
	retval.APIVersion = hivev1.SchemeGroupVersion.String()
	retval.Kind = "ClusterPool"
	for _, o := range opts {
		o(retval)
	}

	return retval
}

type Builder interface {
	Build(opts ...Option) *hivev1.ClusterPool

	Options(opts ...Option) Builder

	GenericOptions(opts ...generic.Option) Builder
}

func BasicBuilder() Builder {
	return &builder{}
}

func FullBuilder(namespace, name string) Builder {
	b := &builder{}
	return b.GenericOptions(
		generic.WithResourceVersion("1"),
		generic.WithNamespace(namespace),
		generic.WithName(name),
	)
}

type builder struct {
	options []Option
}

func (b *builder) Build(opts ...Option) *hivev1.ClusterPool {
	return Build(append(b.options, opts...)...)
}

func (b *builder) Options(opts ...Option) Builder {
	return &builder{
		options: append(b.options, opts...),
	}
}

func (b *builder) GenericOptions(opts ...generic.Option) Builder {
	options := make([]Option, len(opts))
	for i, o := range opts {
		options[i] = Generic(o)
	}
	return b.Options(options...)
}

// Generic allows common functions applicable to all objects to be used as Options to Build
func Generic(opt generic.Option) Option {
	return func(clusterPool *hivev1.ClusterPool) {
		opt(clusterPool)
	}
}

// WithSize sets the number of clusters the pool keeps.
func WithSize(size int) Option {
	return func(clusterPool *hivev1.ClusterPool) {
		clusterPool.Spec.Size = int32(size)
	}
}

// WithStatusSize sets the number of unclaimed clusters reported by Hive.
func WithStatusSize(size int) Option {
	return func(clusterPool *hivev1.ClusterPool) {
		clusterPool.Status.Size = int32(size)
	}
}

// WithStatusReady sets the number of unclaimed clusters which are installed and running.
func WithStatusReady(ready int) Option {
	return func(clusterPool *hivev1.ClusterPool) {
		clusterPool.Status.Ready = int32(ready)
	}
}

func WithBaseDomain(baseDomain string) Option {
	return func(clusterPool *hivev1.ClusterPool) {
		clusterPool.Spec.BaseDomain = baseDomain
	}
}
