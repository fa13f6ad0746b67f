package claims

import (
	"context"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/openshift/hive-claims-manager/pkg/constants"
	"github.com/openshift/hive-claims-manager/pkg/resource"
)

// Options configures a Service.
type Options struct {
	// Namespace holds the pools and claims.
	Namespace string
	// ScratchDir is where kubeconfigs are materialized.
	ScratchDir         string
	ClaimSuffixLength  int
	ResolveConcurrency int
	ResolveTimeout     time.Duration
	ViewCacheTTL       time.Duration
	OwnershipPolicy    OwnershipPolicy
	Clock              clockwork.Clock
}

// Service is the entry point used by the API layer. It ties pool accounting, the claim
// lifecycle and the resolver together over a single namespace.
type Service struct {
	pools        *PoolAccounting
	lifecycle    *ClaimLifecycle
	resolver     *ClaimResolver
	materializer *KubeconfigMaterializer
	ownership    OwnershipPolicy
}

// NewService builds a Service from the facade and options.
func NewService(facade resource.Facade, opts Options, logger log.FieldLogger) *Service {
	if opts.Namespace == "" {
		opts.Namespace = constants.DefaultNamespace
	}
	if opts.ScratchDir == "" {
		opts.ScratchDir = constants.DefaultScratchDir
	}
	if opts.ClaimSuffixLength <= 0 {
		opts.ClaimSuffixLength = constants.DefaultClaimSuffixLength
	}
	if opts.OwnershipPolicy == "" {
		opts.OwnershipPolicy = SubstringOwnership
	}
	logger = logger.WithField("namespace", opts.Namespace)

	materializer := NewKubeconfigMaterializer(opts.ScratchDir, logger)
	resolver := NewClaimResolver(facade, opts.Namespace, materializer, ResolverOptions{
		Concurrency: opts.ResolveConcurrency,
		Timeout:     opts.ResolveTimeout,
		CacheTTL:    opts.ViewCacheTTL,
		Clock:       opts.Clock,
	}, logger)
	lifecycle := NewClaimLifecycle(facade, opts.Namespace, opts.ClaimSuffixLength, opts.OwnershipPolicy, logger)
	lifecycle.OnDelete(materializer.Remove)
	lifecycle.OnDelete(resolver.Forget)

	return &Service{
		pools:        NewPoolAccounting(facade, opts.Namespace, logger),
		lifecycle:    lifecycle,
		resolver:     resolver,
		materializer: materializer,
		ownership:    opts.OwnershipPolicy,
	}
}

// ListPools returns the capacity of every pool in the namespace.
func (s *Service) ListPools(ctx context.Context) ([]Pool, error) {
	return s.pools.ListPools(ctx)
}

// ListClaimViews resolves every claim of the namespace, sorted by name.
func (s *Service) ListClaimViews(ctx context.Context) []ClaimView {
	return s.resolver.ResolveAll(ctx)
}

// CreateClaim claims a cluster from pool for owner.
func (s *Service) CreateClaim(ctx context.Context, owner, pool string) ClaimResult {
	return s.lifecycle.CreateClaim(ctx, owner, pool)
}

// DeleteClaim deletes the claim. Callers must check OwnsClaim first.
func (s *Service) DeleteClaim(ctx context.Context, name string) error {
	return s.lifecycle.DeleteClaim(ctx, name)
}

// ListOwnerClaimNames returns the names of the claims owned by owner.
func (s *Service) ListOwnerClaimNames(ctx context.Context, owner string) ([]string, error) {
	return s.lifecycle.ListOwnerClaimNames(ctx, owner)
}

// DeleteAllClaimsForOwner deletes every claim owned by owner. An empty owner deletes nothing.
func (s *Service) DeleteAllClaimsForOwner(ctx context.Context, owner string) (DeleteResult, error) {
	return s.lifecycle.DeleteAllClaimsForOwner(ctx, owner)
}

// GetKubeconfigHandle returns the download handle of the claim's kubeconfig or NotReady.
func (s *Service) GetKubeconfigHandle(claimName string) string {
	return s.materializer.Handle(claimName)
}

// OpenKubeconfig opens a materialized kubeconfig by the file name of its handle.
func (s *Service) OpenKubeconfig(fileName string) (*os.File, error) {
	return s.materializer.Open(fileName)
}

// OwnsClaim returns true when owner may delete the claim.
func (s *Service) OwnsClaim(owner, claimName string) bool {
	return s.ownership.Owns(owner, claimName)
}
