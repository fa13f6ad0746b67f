package clusterdeployment

import (
	corev1 "k8s.io/api/core/v1"

	hivev1 "github.com/openshift/hive/apis/hive/v1"

	"github.com/openshift/hive-claims-manager/pkg/test/generic"
)

// Option defines a function signature for any function that wants to be passed into Build
type Option func(*hivev1.ClusterDeployment)

// Build runs each of the functions passed in to generate the object.
func Build(opts ...Option) *hivev1.ClusterDeployment {
	retval := &hivev1.ClusterDeployment{}
	retval.APIVersion = hivev1.SchemeGroupVersion.String()
	retval.Kind = "ClusterDeployment"
	for _, o := range opts {
		o(retval)
	}

	return retval
}

type Builder interface {
	Build(opts ...Option) *hivev1.ClusterDeployment

	Options(opts ...Option) Builder

	GenericOptions(opts ...generic.Option) Builder
}

func BasicBuilder() Builder {
	return &builder{}
}

// FullBuilder returns a builder for a ClusterDeployment as created by a ClusterPool, where the
// name of the ClusterDeployment matches its namespace.
func FullBuilder(namespace string) Builder {
	b := &builder{}
	return b.GenericOptions(
		generic.WithResourceVersion("1"),
		generic.WithNamespace(namespace),
		generic.WithName(namespace),
	)
}

type builder struct {
	options []Option
}

func (b *builder) Build(opts ...Option) *hivev1.ClusterDeployment {
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
	return func(cd *hivev1.ClusterDeployment) {
		opt(cd)
	}
}

func WithWebConsoleURL(url string) Option {
	return func(cd *hivev1.ClusterDeployment) {
		cd.Status.WebConsoleURL = url
	}
}

func WithAdminPasswordSecret(name string) Option {
	return func(cd *hivev1.ClusterDeployment) {
		clusterMetadata(cd).AdminPasswordSecretRef = &corev1.LocalObjectReference{Name: name}
	}
}

func WithAdminKubeconfigSecret(name string) Option {
	return func(cd *hivev1.ClusterDeployment) {
		clusterMetadata(cd).AdminKubeconfigSecretRef = corev1.LocalObjectReference{Name: name}
	}
}

// Installed sets the ClusterDeployment as installed.
func Installed() Option {
	return func(cd *hivev1.ClusterDeployment) {
		cd.Spec.Installed = true
	}
}

func clusterMetadata(cd *hivev1.ClusterDeployment) *hivev1.ClusterMetadata {
	if cd.Spec.ClusterMetadata == nil {
		cd.Spec.ClusterMetadata = &hivev1.ClusterMetadata{}
	}
	return cd.Spec.ClusterMetadata
}
