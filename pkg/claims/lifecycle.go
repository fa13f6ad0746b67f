package claims

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	utilrand "k8s.io/apimachinery/pkg/util/rand"

	"github.com/openshift/hive-claims-manager/pkg/resource"
)

// ClaimLifecycle creates and deletes ClusterClaims on behalf of users.
type ClaimLifecycle struct {
	facade       resource.Facade
	namespace    string
	suffixLength int
	ownership    OwnershipPolicy
	deleteHooks  []func(claimName string)
	logger       log.FieldLogger
}

// NewClaimLifecycle returns a ClaimLifecycle managing claims in namespace.
func NewClaimLifecycle(facade resource.Facade, namespace string, suffixLength int, ownership OwnershipPolicy, logger log.FieldLogger) *ClaimLifecycle {
	return &ClaimLifecycle{
		facade:       facade,
		namespace:    namespace,
		suffixLength: suffixLength,
		ownership:    ownership,
		logger:       logger.WithField("component", "lifecycle"),
	}
}

// OnDelete registers fn to be called with the name of every claim deleted.
func (l *ClaimLifecycle) OnDelete(fn func(claimName string)) {
	l.deleteHooks = append(l.deleteHooks, fn)
}

// GenerateClaimName returns {owner}-{suffix} where suffix is suffixLength random lowercase
// alphanumeric characters.
func GenerateClaimName(owner string, suffixLength int) string {
	return fmt.Sprintf("%s-%s", owner, utilrand.String(suffixLength))
}

// CreateClaim creates a claim for owner against pool. Failures are reported in the result
// rather than returned, together with the name that was attempted.
func (l *ClaimLifecycle) CreateClaim(ctx context.Context, owner, pool string) ClaimResult {
	name := GenerateClaimName(owner, l.suffixLength)
	logger := l.logger.WithField("claim", name).WithField("pool", pool).WithField("owner", owner)

	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(newClusterClaim(name, l.namespace, owner, pool))
	if err != nil {
		return ClaimResult{Name: name, Error: err.Error()}
	}

	err = l.facade.Create(ctx, resource.ClusterClaimKind, &unstructured.Unstructured{Object: content})
	recordClaimOperation("create", err)
	if err != nil {
		logger.WithError(err).Error("failed to create claim")
		return ClaimResult{Name: name, Error: err.Error()}
	}
	logger.Info("created claim")
	return ClaimResult{Name: name}
}

// DeleteClaim deletes the named claim and returns once the deletion was acknowledged. An empty
// name is ignored and a claim which is already gone is not an error.
func (l *ClaimLifecycle) DeleteClaim(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	logger := l.logger.WithField("claim", name)
	err := l.facade.Delete(ctx, resource.ClusterClaimKind, name, l.namespace)
	switch {
	case apierrors.IsNotFound(err):
		logger.Debug("claim already deleted")
	case err != nil:
		recordClaimOperation("delete", err)
		logger.WithError(err).Error("failed to delete claim")
		return err
	default:
		recordClaimOperation("delete", nil)
		logger.Info("deleted claim")
	}
	for _, hook := range l.deleteHooks {
		hook(name)
	}
	return nil
}

// ListOwnerClaimNames returns the names of the claims owned by owner.
func (l *ClaimLifecycle) ListOwnerClaimNames(ctx context.Context, owner string) ([]string, error) {
	items, err := l.facade.List(ctx, resource.ClusterClaimKind, l.namespace)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for i := range items {
		if name := items[i].GetName(); l.ownership.Owns(owner, name) {
			names = append(names, name)
		}
	}
	return names, nil
}

// DeleteAllClaimsForOwner deletes every claim owned by owner, in the order the claims are listed.
// Claims which fail to delete are skipped and reported in the returned error; the result only
// contains claims whose deletion was acknowledged. An empty owner owns no claim, so nothing is
// deleted for it.
func (l *ClaimLifecycle) DeleteAllClaimsForOwner(ctx context.Context, owner string) (DeleteResult, error) {
	result := DeleteResult{DeletedNames: []string{}}
	names, err := l.ListOwnerClaimNames(ctx, owner)
	if err != nil {
		return result, err
	}
	var errs []error
	for _, name := range names {
		if err := l.DeleteClaim(ctx, name); err != nil {
			errs = append(errs, err)
			continue
		}
		result.DeletedNames = append(result.DeletedNames, name)
	}
	l.logger.WithField("owner", owner).WithField("deleted", len(result.DeletedNames)).Info("deleted claims of owner")
	return result, utilerrors.NewAggregate(errs)
}
