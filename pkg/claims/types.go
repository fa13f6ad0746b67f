package claims

import (
	"strings"

	"github.com/pkg/errors"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/validation"

	hivev1 "github.com/openshift/hive/apis/hive/v1"

	"github.com/openshift/hive-claims-manager/pkg/constants"
)

// Pool is the capacity of a ClusterPool as reported by Hive.
type Pool struct {
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Claimed   int64  `json:"claimed"`
	Available int64  `json:"available"`
}

// Claim is the projection of a ClusterClaim the claims manager works with.
type Claim struct {
	Name     string
	Owner    string
	PoolName string
	// Namespace is the namespace of the ClusterDeployment assigned to the claim. It is empty
	// until Hive assigned a cluster.
	Namespace string
}

// Ready returns true once a cluster was assigned to the claim.
func (c Claim) Ready() bool {
	return c.Namespace != ""
}

// Deployment is the projection of a ClusterDeployment backing a claim.
type Deployment struct {
	Name                  string
	Namespace             string
	WebConsoleURL         string
	AdminPasswordSecret   string
	AdminKubeconfigSecret string
}

// deploymentState is either a Deployment which can be used to resolve the claim's artifacts or
// not ready, in which case deployment is the zero value.
type deploymentState struct {
	deployment Deployment
	ready      bool
}

// ClaimInfo holds the artifacts needed to use a claimed cluster.
type ClaimInfo struct {
	Console    string `json:"console"`
	Kubeconfig string `json:"kubeconfig"`
	Creds      string `json:"creds"`
	Name       string `json:"name"`
}

// ClaimView is the read-only enriched projection of a claim.
type ClaimView struct {
	Name      string    `json:"name"`
	Namespace string    `json:"namespace"`
	Pool      string    `json:"pool"`
	Info      ClaimInfo `json:"info"`
}

// Ready returns true when every artifact of the claim has been resolved.
func (v ClaimView) Ready() bool {
	for _, s := range []string{v.Info.Console, v.Info.Kubeconfig, v.Info.Creds} {
		if s == "" || s == constants.NotReady {
			return false
		}
	}
	return true
}

// ClaimResult is the outcome of a claim creation. Error is empty on success. When it is set the
// claim may or may not exist and should be looked up by Name.
type ClaimResult struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// DeleteResult lists the claims removed by a bulk deletion, in the order they were deleted.
type DeleteResult struct {
	DeletedNames []string `json:"deleted_claims"`
}

func notReadyView(claim Claim) ClaimView {
	return ClaimView{
		Name:      claim.Name,
		Namespace: constants.NotReady,
		Pool:      claim.PoolName,
		Info: ClaimInfo{
			Console:    constants.NotReady,
			Kubeconfig: constants.NotReady,
			Creds:      constants.NotReady,
			Name:       claim.Name,
		},
	}
}

func poolFromUnstructured(obj *unstructured.Unstructured) (Pool, error) {
	cp := &hivev1.ClusterPool{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, cp); err != nil {
		return Pool{Name: obj.GetName()}, errors.Wrapf(err, "could not decode cluster pool %s/%s", obj.GetNamespace(), obj.GetName())
	}
	// A pool which has not reported a status yet has nothing available. The typed status cannot
	// tell an unset status from an empty one.
	_, statusReported := obj.Object["status"]
	return poolFromClusterPool(cp, statusReported), nil
}

func poolFromClusterPool(cp *hivev1.ClusterPool, statusReported bool) Pool {
	pool := Pool{Name: cp.Name, Size: int64(cp.Spec.Size)}
	if !statusReported {
		return pool
	}
	// Hive counts all unclaimed clusters, which can briefly exceed the pool size while it shrinks.
	available := int64(cp.Status.Size)
	if available > pool.Size {
		available = pool.Size
	}
	if available < 0 {
		available = 0
	}
	pool.Available = available
	pool.Claimed = pool.Size - available
	return pool
}

func claimFromUnstructured(obj *unstructured.Unstructured) (Claim, error) {
	cc := &hivev1.ClusterClaim{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, cc); err != nil {
		return Claim{Name: obj.GetName(), Owner: ownerFromName(obj.GetName())},
			errors.Wrapf(err, "could not decode cluster claim %s/%s", obj.GetNamespace(), obj.GetName())
	}
	return claimFromClusterClaim(cc), nil
}

func claimFromClusterClaim(cc *hivev1.ClusterClaim) Claim {
	claim := Claim{
		Name:      cc.Name,
		PoolName:  cc.Spec.ClusterPoolName,
		Namespace: cc.Spec.Namespace,
		Owner:     cc.Labels[constants.ClaimOwnerLabel],
	}
	if claim.Owner == "" {
		claim.Owner = ownerFromName(claim.Name)
	}
	return claim
}

// ownerFromName recovers the owner of a claim named {owner}-{suffix}.
func ownerFromName(name string) string {
	if i := strings.LastIndex(name, "-"); i > 0 {
		return name[:i]
	}
	return name
}

func deploymentFromUnstructured(obj *unstructured.Unstructured) (Deployment, error) {
	cd := &hivev1.ClusterDeployment{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, cd); err != nil {
		return Deployment{}, errors.Wrapf(err, "could not decode cluster deployment %s/%s", obj.GetNamespace(), obj.GetName())
	}
	return deploymentFromClusterDeployment(cd), nil
}

func deploymentFromClusterDeployment(cd *hivev1.ClusterDeployment) Deployment {
	d := Deployment{
		Name:          cd.Name,
		Namespace:     cd.Namespace,
		WebConsoleURL: cd.Status.WebConsoleURL,
	}
	if md := cd.Spec.ClusterMetadata; md != nil {
		d.AdminKubeconfigSecret = md.AdminKubeconfigSecretRef.Name
		if md.AdminPasswordSecretRef != nil {
			d.AdminPasswordSecret = md.AdminPasswordSecretRef.Name
		}
	}
	return d
}

// newClusterClaim returns the ClusterClaim requesting a cluster from pool.
func newClusterClaim(name, namespace, owner, pool string) *hivev1.ClusterClaim {
	cc := &hivev1.ClusterClaim{
		TypeMeta: metav1.TypeMeta{
			APIVersion: hivev1.SchemeGroupVersion.String(),
			Kind:       "ClusterClaim",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Spec: hivev1.ClusterClaimSpec{
			ClusterPoolName: pool,
		},
	}
	if len(validation.IsValidLabelValue(owner)) == 0 {
		cc.Labels = map[string]string{constants.ClaimOwnerLabel: owner}
	}
	return cc
}

// secretFromUnstructured converts the secret to its typed form, which decodes the base64 data.
func secretFromUnstructured(obj *unstructured.Unstructured) (*corev1.Secret, error) {
	s := &corev1.Secret{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, s); err != nil {
		return nil, errors.Wrapf(err, "could not decode secret %s/%s", obj.GetNamespace(), obj.GetName())
	}
	return s, nil
}
