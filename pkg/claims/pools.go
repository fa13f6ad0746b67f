package claims

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/openshift/hive-claims-manager/pkg/resource"
)

// PoolAccounting reports the capacity of the ClusterPools in a namespace.
type PoolAccounting struct {
	facade    resource.Facade
	namespace string
	logger    log.FieldLogger
}

// NewPoolAccounting returns a PoolAccounting for the pools in namespace.
func NewPoolAccounting(facade resource.Facade, namespace string, logger log.FieldLogger) *PoolAccounting {
	return &PoolAccounting{
		facade:    facade,
		namespace: namespace,
		logger:    logger.WithField("component", "pools"),
	}
}

// ListPools returns every pool of the namespace. Pools which have not reported a status yet are
// returned with nothing claimed and nothing available. Facade errors are returned unchanged.
func (a *PoolAccounting) ListPools(ctx context.Context) ([]Pool, error) {
	items, err := a.facade.List(ctx, resource.ClusterPoolKind, a.namespace)
	if err != nil {
		return nil, err
	}
	pools := make([]Pool, 0, len(items))
	for i := range items {
		pool, err := poolFromUnstructured(&items[i])
		if err != nil {
			a.logger.WithError(err).Warn("pool reported as unavailable")
		}
		recordPool(pool)
		pools = append(pools, pool)
	}
	a.logger.WithField("count", len(pools)).Debug("listed pools")
	return pools, nil
}
