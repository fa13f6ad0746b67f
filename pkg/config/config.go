package config

import (
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/yaml"

	"github.com/openshift/hive-claims-manager/pkg/claims"
	"github.com/openshift/hive-claims-manager/pkg/constants"
)

const (
	defaultResolveTimeout = 30 * time.Second
	minSuffixLength       = 5
	maxSuffixLength       = 16
)

// Config is the configuration of the claims manager. It is read from an optional YAML file and
// overridden by environment variables and command line flags, in that order.
type Config struct {
	// Namespace holds the ClusterPools and ClusterClaims.
	Namespace string `json:"namespace,omitempty"`

	// ListenAddress is the address the HTTP API listens on.
	ListenAddress string `json:"listenAddress,omitempty"`

	// ScratchDir is the directory kubeconfigs are materialized into.
	ScratchDir string `json:"scratchDir,omitempty"`

	// OwnershipPolicy is either "substring" or "prefix".
	OwnershipPolicy string `json:"ownershipPolicy,omitempty"`

	ClaimSuffixLength  *int             `json:"claimSuffixLength,omitempty"`
	ResolveConcurrency *int             `json:"resolveConcurrency,omitempty"`
	ResolveTimeout     *metav1.Duration `json:"resolveTimeout,omitempty"`

	// ViewCacheTTL enables caching of ready claim views. Caching is disabled when unset or zero.
	ViewCacheTTL *metav1.Duration `json:"viewCacheTTL,omitempty"`

	Kube      KubeConfig      `json:"kube,omitempty"`
	RateLimit RateLimitConfig `json:"rateLimit,omitempty"`
}

// KubeConfig tunes the client of the resource API.
type KubeConfig struct {
	QPS   *float32 `json:"qps,omitempty"`
	Burst *int     `json:"burst,omitempty"`
}

// RateLimitConfig limits the rate of claim creations and deletions served by the API.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate. A value of zero disables rate limiting.
	RequestsPerSecond *float64 `json:"requestsPerSecond,omitempty"`
	Burst             *int     `json:"burst,omitempty"`
}

// Load reads the configuration file at path, if any, applies environment overrides and fills in
// defaults. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "could not read config file")
		}
		if err := yaml.UnmarshalStrict(content, cfg); err != nil {
			return nil, errors.Wrapf(err, "could not parse config file %s", path)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.SetDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	for env, target := range map[string]*string{
		constants.NamespaceEnvVar:       &c.Namespace,
		constants.ListenAddressEnvVar:   &c.ListenAddress,
		constants.ScratchDirEnvVar:      &c.ScratchDir,
		constants.OwnershipPolicyEnvVar: &c.OwnershipPolicy,
	} {
		if v, ok := lookup(env); ok && v != "" {
			*target = v
		}
	}
}

// SetDefaults fills in every unset field.
func (c *Config) SetDefaults() {
	if c.Namespace == "" {
		c.Namespace = constants.DefaultNamespace
	}
	if c.ListenAddress == "" {
		c.ListenAddress = constants.DefaultListenAddress
	}
	if c.ScratchDir == "" {
		c.ScratchDir = constants.DefaultScratchDir
	}
	if c.OwnershipPolicy == "" {
		c.OwnershipPolicy = string(claims.SubstringOwnership)
	}
	if c.ClaimSuffixLength == nil {
		c.ClaimSuffixLength = ptr.To(constants.DefaultClaimSuffixLength)
	}
	if c.ResolveConcurrency == nil {
		c.ResolveConcurrency = ptr.To(constants.DefaultResolveConcurrency)
	}
	if c.ResolveTimeout == nil {
		c.ResolveTimeout = &metav1.Duration{Duration: defaultResolveTimeout}
	}
	if c.ViewCacheTTL == nil {
		c.ViewCacheTTL = &metav1.Duration{}
	}
	if c.Kube.QPS == nil {
		c.Kube.QPS = ptr.To[float32](50)
	}
	if c.Kube.Burst == nil {
		c.Kube.Burst = ptr.To(100)
	}
	if c.RateLimit.RequestsPerSecond == nil {
		c.RateLimit.RequestsPerSecond = ptr.To(5.0)
	}
	if c.RateLimit.Burst == nil {
		c.RateLimit.Burst = ptr.To(10)
	}
}

// Validate returns an aggregate of every invalid field. It expects defaults to be set.
func (c *Config) Validate() error {
	var allErrs field.ErrorList
	if c.Namespace == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("namespace"), "namespace must be set"))
	}
	if c.ListenAddress == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("listenAddress"), "listen address must be set"))
	}
	if c.ScratchDir == "" {
		allErrs = append(allErrs, field.Required(field.NewPath("scratchDir"), "scratch directory must be set"))
	}
	if _, err := claims.ParseOwnershipPolicy(c.OwnershipPolicy); err != nil {
		allErrs = append(allErrs, field.NotSupported(field.NewPath("ownershipPolicy"), c.OwnershipPolicy,
			[]string{string(claims.SubstringOwnership), string(claims.PrefixOwnership)}))
	}
	if l := ptr.Deref(c.ClaimSuffixLength, 0); l < minSuffixLength || l > maxSuffixLength {
		allErrs = append(allErrs, field.Invalid(field.NewPath("claimSuffixLength"), l, "must be between 5 and 16"))
	}
	if n := ptr.Deref(c.ResolveConcurrency, 0); n <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("resolveConcurrency"), n, "must be positive"))
	}
	if d := durationOrZero(c.ResolveTimeout); d < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("resolveTimeout"), d.String(), "must not be negative"))
	}
	if d := durationOrZero(c.ViewCacheTTL); d < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("viewCacheTTL"), d.String(), "must not be negative"))
	}
	if q := ptr.Deref(c.Kube.QPS, 0); q <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("kube", "qps"), q, "must be positive"))
	}
	if b := ptr.Deref(c.Kube.Burst, 0); b <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("kube", "burst"), b, "must be positive"))
	}
	if r := ptr.Deref(c.RateLimit.RequestsPerSecond, 0); r < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("rateLimit", "requestsPerSecond"), r, "must not be negative"))
	}
	if r, b := ptr.Deref(c.RateLimit.RequestsPerSecond, 0), ptr.Deref(c.RateLimit.Burst, 0); r > 0 && b <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("rateLimit", "burst"), b, "must be positive when rate limiting is enabled"))
	}
	return allErrs.ToAggregate()
}

// ServiceOptions returns the options of the claims service.
func (c *Config) ServiceOptions(clock clockwork.Clock) claims.Options {
	policy, _ := claims.ParseOwnershipPolicy(c.OwnershipPolicy)
	return claims.Options{
		Namespace:          c.Namespace,
		ScratchDir:         c.ScratchDir,
		ClaimSuffixLength:  ptr.Deref(c.ClaimSuffixLength, constants.DefaultClaimSuffixLength),
		ResolveConcurrency: ptr.Deref(c.ResolveConcurrency, constants.DefaultResolveConcurrency),
		ResolveTimeout:     durationOrZero(c.ResolveTimeout),
		ViewCacheTTL:       durationOrZero(c.ViewCacheTTL),
		OwnershipPolicy:    policy,
		Clock:              clock,
	}
}

func durationOrZero(d *metav1.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return d.Duration
}
