package claims

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/util/cache"

	"github.com/openshift/hive-claims-manager/pkg/constants"
	"github.com/openshift/hive-claims-manager/pkg/resource"
)

const viewCacheSize = 1024

// ResolverOptions tunes a ClaimResolver.
type ResolverOptions struct {
	// Concurrency bounds the number of claims resolved at the same time.
	Concurrency int
	// Timeout bounds a whole ResolveAll call. Zero disables the timeout.
	Timeout time.Duration
	// CacheTTL is how long a ready view is served without asking the API again. Zero disables
	// the cache.
	CacheTTL time.Duration
	// Clock drives the cache expiry. Defaults to the real clock.
	Clock clockwork.Clock
}

// ClaimResolver enriches claims with the artifacts of their backing clusters.
type ClaimResolver struct {
	facade       resource.Facade
	namespace    string
	materializer *KubeconfigMaterializer
	options      ResolverOptions
	// cache is nil when disabled.
	cache  *cache.LRUExpireCache
	logger log.FieldLogger
}

// NewClaimResolver returns a resolver for the claims in namespace.
func NewClaimResolver(facade resource.Facade, namespace string, materializer *KubeconfigMaterializer, options ResolverOptions, logger log.FieldLogger) *ClaimResolver {
	if options.Concurrency <= 0 {
		options.Concurrency = constants.DefaultResolveConcurrency
	}
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}
	r := &ClaimResolver{
		facade:       facade,
		namespace:    namespace,
		materializer: materializer,
		options:      options,
		logger:       logger.WithField("component", "resolver"),
	}
	if options.CacheTTL > 0 {
		r.cache = cache.NewLRUExpireCacheWithClock(viewCacheSize, options.Clock)
	}
	return r
}

type resolvedView struct {
	index int
	view  ClaimView
}

// ResolveAll returns a view of every claim in the namespace, sorted by name. Failures are never
// returned: a claim which could not be resolved is returned with degraded fields, and claims
// still being resolved when the timeout expires are returned as not ready.
func (r *ClaimResolver) ResolveAll(ctx context.Context) []ClaimView {
	start := time.Now()
	defer func() {
		metricResolveDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	if r.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.options.Timeout)
		defer cancel()
	}

	items, err := r.facade.List(ctx, resource.ClusterClaimKind, r.namespace)
	if err != nil {
		r.logger.WithError(err).Error("could not list claims")
		return []ClaimView{}
	}
	claims := make([]Claim, len(items))
	for i := range items {
		claim, err := claimFromUnstructured(&items[i])
		if err != nil {
			r.logger.WithError(err).Warn("claim reported as not ready")
		}
		claims[i] = claim
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].Name < claims[j].Name })

	views := make([]ClaimView, len(claims))
	for i, claim := range claims {
		views[i] = notReadyView(claim)
	}

	results := make(chan resolvedView, len(claims))
	go func() {
		g := errgroup.Group{}
		g.SetLimit(r.options.Concurrency)
		for i := range claims {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				results <- resolvedView{index: i, view: r.resolveOne(ctx, claims[i])}
				return nil
			})
		}
		g.Wait()
		close(results)
	}()

	resolved := 0
	for done := false; !done; {
		select {
		case res, ok := <-results:
			if !ok {
				done = true
				break
			}
			views[res.index] = res.view
			resolved++
		case <-ctx.Done():
			// Keep what already completed, everything else stays not ready.
			for drained := false; !drained; {
				select {
				case res, ok := <-results:
					if !ok {
						drained = true
						break
					}
					views[res.index] = res.view
					resolved++
				default:
					drained = true
				}
			}
			r.logger.WithError(ctx.Err()).WithField("resolved", resolved).WithField("total", len(claims)).
				Warn("resolving claims was interrupted")
			done = true
		}
	}
	r.logger.WithField("claims", len(claims)).WithField("elapsed", time.Since(start)).Debug("resolved claims")
	return views
}

// Forget drops the cached view of the claim.
func (r *ClaimResolver) Forget(claimName string) {
	if r.cache == nil {
		return
	}
	for _, key := range r.cache.Keys() {
		if k, ok := key.(viewCacheKey); ok && k.name == claimName {
			r.cache.Remove(key)
		}
	}
}

type viewCacheKey struct {
	name      string
	namespace string
}

// resolveOne runs the claim -> deployment -> secrets chain for a single claim.
func (r *ClaimResolver) resolveOne(ctx context.Context, claim Claim) ClaimView {
	if !claim.Ready() {
		metricClaimsResolved.WithLabelValues(stateNotReady).Inc()
		return notReadyView(claim)
	}

	key := viewCacheKey{name: claim.Name, namespace: claim.Namespace}
	if r.cache != nil {
		if v, ok := r.cache.Get(key); ok {
			metricClaimsResolved.WithLabelValues(stateCached).Inc()
			return v.(ClaimView)
		}
	}

	logger := r.logger.WithField("claim", claim.Name).WithField("namespace", claim.Namespace)
	view := ClaimView{
		Name:      claim.Name,
		Namespace: claim.Namespace,
		Pool:      claim.PoolName,
		Info:      ClaimInfo{Name: claim.Name},
	}

	state, err := r.resolveDeployment(ctx, claim)
	if err != nil {
		logger.WithError(err).Warn("could not resolve cluster deployment")
		metricClaimsResolved.WithLabelValues(stateDegraded).Inc()
		view.Info.Console = constants.NotReady
		return view
	}
	if !state.ready {
		metricClaimsResolved.WithLabelValues(stateNotReady).Inc()
		view.Info.Console = constants.NotReady
		view.Info.Kubeconfig = constants.NotReady
		view.Info.Creds = constants.NotReady
		return view
	}

	cd := state.deployment
	view.Info.Console = cd.WebConsoleURL
	if view.Info.Console == "" {
		view.Info.Console = constants.NotReady
	}
	view.Info.Creds, err = r.credentials(ctx, cd)
	if err != nil {
		logger.WithError(err).Warn("could not resolve admin credentials")
	}
	view.Info.Kubeconfig, err = r.kubeconfig(ctx, claim.Name, cd)
	if err != nil {
		logger.WithError(err).Warn("could not resolve admin kubeconfig")
	}

	switch {
	case view.Ready():
		metricClaimsResolved.WithLabelValues(stateReady).Inc()
		if r.cache != nil {
			r.cache.Add(key, view, r.options.CacheTTL)
		}
	case view.Info.Creds == "" || view.Info.Kubeconfig == "":
		metricClaimsResolved.WithLabelValues(stateDegraded).Inc()
	default:
		metricClaimsResolved.WithLabelValues(stateNotReady).Inc()
	}
	return view
}

// resolveDeployment looks up the ClusterDeployment assigned to the claim. The deployment is
// named after its namespace. A deployment which does not exist yet is not ready rather than an
// error as Hive assigns the namespace before the deployment shows up in the cache.
func (r *ClaimResolver) resolveDeployment(ctx context.Context, claim Claim) (deploymentState, error) {
	obj, err := r.facade.Get(ctx, resource.ClusterDeploymentKind, claim.Namespace, claim.Namespace)
	switch {
	case apierrors.IsNotFound(err):
		return deploymentState{}, nil
	case err != nil:
		return deploymentState{}, err
	}
	cd, err := deploymentFromUnstructured(obj)
	if err != nil {
		return deploymentState{}, err
	}
	return deploymentState{deployment: cd, ready: true}, nil
}

func (r *ClaimResolver) credentials(ctx context.Context, cd Deployment) (string, error) {
	if cd.AdminPasswordSecret == "" {
		return "", errors.Errorf("cluster deployment %s/%s has no admin password secret", cd.Namespace, cd.Name)
	}
	obj, err := r.facade.Get(ctx, resource.SecretKind, cd.AdminPasswordSecret, cd.Namespace)
	if err != nil {
		return "", err
	}
	secret, err := secretFromUnstructured(obj)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Username %s:Password %s",
		secret.Data[constants.UsernameSecretKey], secret.Data[constants.PasswordSecretKey]), nil
}

func (r *ClaimResolver) kubeconfig(ctx context.Context, claimName string, cd Deployment) (string, error) {
	if cd.AdminKubeconfigSecret == "" {
		return "", errors.Errorf("cluster deployment %s/%s has no admin kubeconfig secret", cd.Namespace, cd.Name)
	}
	obj, err := r.facade.Get(ctx, resource.SecretKind, cd.AdminKubeconfigSecret, cd.Namespace)
	if err != nil {
		return "", err
	}
	secret, err := secretFromUnstructured(obj)
	if err != nil {
		return "", err
	}
	return r.materializer.Materialize(claimName, secret)
}
