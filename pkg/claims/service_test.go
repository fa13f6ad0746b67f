package claims

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/openshift/hive-claims-manager/pkg/constants"
	"github.com/openshift/hive-claims-manager/pkg/resource"
	"github.com/openshift/hive-claims-manager/pkg/resource/mock"
)

func TestServiceKubeconfigLifecycle(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	f := mock.NewMockFacade(mockCtrl)
	dir := t.TempDir()
	s := NewService(f, Options{Namespace: testNamespace, ScratchDir: dir}, log.WithField("test", t.Name()))

	f.EXPECT().List(gomock.Any(), resource.ClusterClaimKind, testNamespace).
		Return([]unstructured.Unstructured{testClaim("alice-x1b2c", "alice-cluster")}, nil)
	expectReadyCluster(f, "alice-cluster", 1)

	assert.Equal(t, constants.NotReady, s.GetKubeconfigHandle("alice-x1b2c"))
	views := s.ListClaimViews(context.Background())
	require.Len(t, views, 1)
	assert.Equal(t, views[0].Info.Kubeconfig, s.GetKubeconfigHandle("alice-x1b2c"))

	file, err := s.OpenKubeconfig(filepath.Base(views[0].Info.Kubeconfig))
	require.NoError(t, err)
	file.Close()

	assert.True(t, s.OwnsClaim("alice", "alice-x1b2c"))
	assert.False(t, s.OwnsClaim("bob", "alice-x1b2c"))

	f.EXPECT().Delete(gomock.Any(), resource.ClusterClaimKind, "alice-x1b2c", testNamespace).Return(nil)
	require.NoError(t, s.DeleteClaim(context.Background(), "alice-x1b2c"))
	assert.Equal(t, constants.NotReady, s.GetKubeconfigHandle("alice-x1b2c"))
	_, err = os.Stat(filepath.Join(dir, "kubeconfig-alice-x1b2c"))
	assert.True(t, os.IsNotExist(err))
}

func TestServiceDefaults(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	f := mock.NewMockFacade(mockCtrl)
	s := NewService(f, Options{}, log.WithField("test", t.Name()))

	f.EXPECT().List(gomock.Any(), resource.ClusterPoolKind, constants.DefaultNamespace).Return(nil, nil)
	pools, err := s.ListPools(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pools)

	f.EXPECT().Create(gomock.Any(), resource.ClusterClaimKind, gomock.Any()).Return(nil)
	result := s.CreateClaim(context.Background(), "bob", testPool)
	assert.Regexp(t, `^bob-[a-z0-9]{5}$`, result.Name)
	assert.True(t, s.OwnsClaim("bo", result.Name), "substring ownership is the default")
}

func TestServicePrefixOwnership(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	f := mock.NewMockFacade(mockCtrl)
	s := NewService(f, Options{Namespace: testNamespace, ScratchDir: t.TempDir(), OwnershipPolicy: PrefixOwnership}, log.WithField("test", t.Name()))

	f.EXPECT().List(gomock.Any(), resource.ClusterClaimKind, testNamespace).Return(mixedOwnerClaims(), nil).Times(2)
	f.EXPECT().Delete(gomock.Any(), resource.ClusterClaimKind, "alice-x1", testNamespace).Return(nil)

	names, err := s.ListOwnerClaimNames(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice-x1"}, names)

	result, err := s.DeleteAllClaimsForOwner(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice-x1"}, result.DeletedNames)
	assert.False(t, s.OwnsClaim("alice", "alice2-x2"))
}
