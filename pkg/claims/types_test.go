package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/openshift/hive-claims-manager/pkg/constants"
	"github.com/openshift/hive-claims-manager/pkg/test/clusterclaim"
	"github.com/openshift/hive-claims-manager/pkg/test/clusterdeployment"
	"github.com/openshift/hive-claims-manager/pkg/test/generic"
)

func TestClaimFromUnstructured(t *testing.T) {
	tests := []struct {
		name     string
		claim    *unstructured.Unstructured
		expected Claim
	}{
		{
			name:     "pending",
			claim:    generic.ToUnstructured(clusterclaim.FullBuilder(testNamespace, "alice-x1b2c").Build(clusterclaim.WithPool(testPool))),
			expected: Claim{Name: "alice-x1b2c", Owner: "alice", PoolName: testPool},
		},
		{
			name: "assigned",
			claim: generic.ToUnstructured(clusterclaim.FullBuilder(testNamespace, "alice-x1b2c").Build(
				clusterclaim.WithPool(testPool),
				clusterclaim.WithCluster("alice-cluster"),
			)),
			expected: Claim{Name: "alice-x1b2c", Owner: "alice", PoolName: testPool, Namespace: "alice-cluster"},
		},
		{
			name: "owner label",
			claim: generic.ToUnstructured(clusterclaim.FullBuilder(testNamespace, "team-a-x1b2c").Build(
				clusterclaim.WithPool(testPool),
				clusterclaim.Generic(generic.WithLabel(constants.ClaimOwnerLabel, "carol")),
			)),
			expected: Claim{Name: "team-a-x1b2c", Owner: "carol", PoolName: testPool},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			claim, err := claimFromUnstructured(test.claim)
			require.NoError(t, err)
			assert.Equal(t, test.expected, claim)
		})
	}
}

func TestClaimFromUnstructuredMalformed(t *testing.T) {
	obj := generic.ToUnstructured(clusterclaim.FullBuilder(testNamespace, "alice-x1b2c").Build())
	obj.Object["spec"] = "not an object"

	claim, err := claimFromUnstructured(obj)

	assert.Error(t, err)
	assert.Equal(t, Claim{Name: "alice-x1b2c", Owner: "alice"}, claim)
	assert.False(t, claim.Ready())
}

func TestDeploymentFromUnstructured(t *testing.T) {
	tests := []struct {
		name       string
		deployment *unstructured.Unstructured
		expected   Deployment
	}{
		{
			name: "installed",
			deployment: generic.ToUnstructured(clusterdeployment.FullBuilder("alice-cluster").Build(
				clusterdeployment.Installed(),
				clusterdeployment.WithWebConsoleURL("https://console"),
				clusterdeployment.WithAdminPasswordSecret("alice-cluster-admin-password"),
				clusterdeployment.WithAdminKubeconfigSecret("alice-cluster-admin-kubeconfig"),
			)),
			expected: Deployment{
				Name:                  "alice-cluster",
				Namespace:             "alice-cluster",
				WebConsoleURL:         "https://console",
				AdminPasswordSecret:   "alice-cluster-admin-password",
				AdminKubeconfigSecret: "alice-cluster-admin-kubeconfig",
			},
		},
		{
			name:       "no cluster metadata",
			deployment: generic.ToUnstructured(clusterdeployment.FullBuilder("alice-cluster").Build()),
			expected:   Deployment{Name: "alice-cluster", Namespace: "alice-cluster"},
		},
		{
			name: "no password secret",
			deployment: generic.ToUnstructured(clusterdeployment.FullBuilder("alice-cluster").Build(
				clusterdeployment.WithAdminKubeconfigSecret("alice-cluster-admin-kubeconfig"),
			)),
			expected: Deployment{
				Name:                  "alice-cluster",
				Namespace:             "alice-cluster",
				AdminKubeconfigSecret: "alice-cluster-admin-kubeconfig",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cd, err := deploymentFromUnstructured(test.deployment)
			require.NoError(t, err)
			assert.Equal(t, test.expected, cd)
		})
	}
}
