package claims

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/openshift/hive-claims-manager/pkg/constants"
	"github.com/openshift/hive-claims-manager/pkg/resource"
	"github.com/openshift/hive-claims-manager/pkg/resource/mock"
	"github.com/openshift/hive-claims-manager/pkg/test/clusterclaim"
	"github.com/openshift/hive-claims-manager/pkg/test/clusterdeployment"
	"github.com/openshift/hive-claims-manager/pkg/test/generic"
	testlogger "github.com/openshift/hive-claims-manager/pkg/test/logger"
	"github.com/openshift/hive-claims-manager/pkg/test/secret"
)

const (
	testNamespace = "hive"
	testPool      = "small-pool"
)

func init() {
	log.SetLevel(log.DebugLevel)
}

func testClaim(name, cluster string) unstructured.Unstructured {
	opts := []clusterclaim.Option{clusterclaim.WithPool(testPool)}
	if cluster != "" {
		opts = append(opts, clusterclaim.WithCluster(cluster))
	}
	return *generic.ToUnstructured(clusterclaim.FullBuilder(testNamespace, name).Build(opts...))
}

// expectReadyCluster registers the deployment and secret lookups of a fully provisioned cluster.
func expectReadyCluster(f *mock.MockFacade, cluster string, times int) {
	cd := generic.ToUnstructured(clusterdeployment.FullBuilder(cluster).Build(
		clusterdeployment.Installed(),
		clusterdeployment.WithWebConsoleURL("https://console-openshift-console.apps."+cluster+".example.com"),
		clusterdeployment.WithAdminPasswordSecret(cluster+"-admin-password"),
		clusterdeployment.WithAdminKubeconfigSecret(cluster+"-admin-kubeconfig"),
	))
	password := secret.BuildUnstructured(
		secret.WithName(cluster+"-admin-password"),
		secret.WithNamespace(cluster),
		secret.WithDataKeyValue(constants.UsernameSecretKey, []byte("kubeadmin")),
		secret.WithDataKeyValue(constants.PasswordSecretKey, []byte("s3cr3t-"+cluster)),
	)
	kubeconfig := secret.BuildUnstructured(
		secret.WithName(cluster+"-admin-kubeconfig"),
		secret.WithNamespace(cluster),
		secret.WithDataKeyValue(constants.KubeconfigSecretKey, []byte("kubeconfig of "+cluster)),
	)
	f.EXPECT().Get(gomock.Any(), resource.ClusterDeploymentKind, cluster, cluster).Return(cd, nil).Times(times)
	f.EXPECT().Get(gomock.Any(), resource.SecretKind, cluster+"-admin-password", cluster).Return(password, nil).Times(times)
	f.EXPECT().Get(gomock.Any(), resource.SecretKind, cluster+"-admin-kubeconfig", cluster).Return(kubeconfig, nil).Times(times)
}

func expectedReadyView(name, cluster string) ClaimView {
	return ClaimView{
		Name:      name,
		Namespace: cluster,
		Pool:      testPool,
		Info: ClaimInfo{
			Console:    "https://console-openshift-console.apps." + cluster + ".example.com",
			Kubeconfig: "/kubeconfig/kubeconfig-" + name,
			Creds:      "Username kubeadmin:Password s3cr3t-" + cluster,
			Name:       name,
		},
	}
}

func newTestResolver(t *testing.T, f resource.Facade, options ResolverOptions) (*ClaimResolver, string) {
	dir := t.TempDir()
	logger := log.WithField("test", t.Name())
	return NewClaimResolver(f, testNamespace, NewKubeconfigMaterializer(dir, logger), options, logger), dir
}

func TestResolveAll(t *testing.T) {
	transient := apierrors.NewServiceUnavailable("etcd is busy")
	tests := []struct {
		name     string
		claims   []unstructured.Unstructured
		setup    func(f *mock.MockFacade)
		expected []ClaimView
	}{
		{
			name:   "no claims",
			claims: []unstructured.Unstructured{},
		},
		{
			name:   "claim without cluster makes no further lookups",
			claims: []unstructured.Unstructured{testClaim("alice-x1b2c", "")},
			setup: func(f *mock.MockFacade) {
				f.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			expected: []ClaimView{
				{
					Name:      "alice-x1b2c",
					Namespace: constants.NotReady,
					Pool:      testPool,
					Info: ClaimInfo{
						Console:    constants.NotReady,
						Kubeconfig: constants.NotReady,
						Creds:      constants.NotReady,
						Name:       "alice-x1b2c",
					},
				},
			},
		},
		{
			name:   "ready claims sorted by name",
			claims: []unstructured.Unstructured{testClaim("bob-k9d2a", "bob-cluster"), testClaim("alice-x1b2c", "alice-cluster")},
			setup: func(f *mock.MockFacade) {
				expectReadyCluster(f, "alice-cluster", 1)
				expectReadyCluster(f, "bob-cluster", 1)
			},
			expected: []ClaimView{
				expectedReadyView("alice-x1b2c", "alice-cluster"),
				expectedReadyView("bob-k9d2a", "bob-cluster"),
			},
		},
		{
			name: "transient deployment error degrades only that claim",
			claims: []unstructured.Unstructured{
				testClaim("alice-x1b2c", "alice-cluster"),
				testClaim("bob-k9d2a", "bob-cluster"),
				testClaim("carol-p0q1r", "carol-cluster"),
			},
			setup: func(f *mock.MockFacade) {
				expectReadyCluster(f, "alice-cluster", 1)
				f.EXPECT().Get(gomock.Any(), resource.ClusterDeploymentKind, "bob-cluster", "bob-cluster").Return(nil, transient)
				expectReadyCluster(f, "carol-cluster", 1)
			},
			expected: []ClaimView{
				expectedReadyView("alice-x1b2c", "alice-cluster"),
				{
					Name:      "bob-k9d2a",
					Namespace: "bob-cluster",
					Pool:      testPool,
					Info:      ClaimInfo{Console: constants.NotReady, Name: "bob-k9d2a"},
				},
				expectedReadyView("carol-p0q1r", "carol-cluster"),
			},
		},
		{
			name:   "deployment not created yet",
			claims: []unstructured.Unstructured{testClaim("alice-x1b2c", "alice-cluster")},
			setup: func(f *mock.MockFacade) {
				f.EXPECT().Get(gomock.Any(), resource.ClusterDeploymentKind, "alice-cluster", "alice-cluster").
					Return(nil, apierrors.NewNotFound(schema.GroupResource{Group: "hive.openshift.io", Resource: "clusterdeployments"}, "alice-cluster"))
				f.EXPECT().Get(gomock.Any(), resource.SecretKind, gomock.Any(), gomock.Any()).Times(0)
			},
			expected: []ClaimView{
				{
					Name:      "alice-x1b2c",
					Namespace: "alice-cluster",
					Pool:      testPool,
					Info: ClaimInfo{
						Console:    constants.NotReady,
						Kubeconfig: constants.NotReady,
						Creds:      constants.NotReady,
						Name:       "alice-x1b2c",
					},
				},
			},
		},
		{
			name:   "installing cluster without console",
			claims: []unstructured.Unstructured{testClaim("alice-x1b2c", "alice-cluster")},
			setup: func(f *mock.MockFacade) {
				cd := generic.ToUnstructured(clusterdeployment.FullBuilder("alice-cluster").Build(
					clusterdeployment.WithAdminPasswordSecret("alice-cluster-admin-password"),
					clusterdeployment.WithAdminKubeconfigSecret("alice-cluster-admin-kubeconfig"),
				))
				f.EXPECT().Get(gomock.Any(), resource.ClusterDeploymentKind, "alice-cluster", "alice-cluster").Return(cd, nil)
				f.EXPECT().Get(gomock.Any(), resource.SecretKind, "alice-cluster-admin-password", "alice-cluster").
					Return(secret.BuildUnstructured(
						secret.WithName("alice-cluster-admin-password"),
						secret.WithNamespace("alice-cluster"),
						secret.WithDataKeyValue("username", []byte("kubeadmin")),
						secret.WithDataKeyValue("password", []byte("pw")),
					), nil)
				f.EXPECT().Get(gomock.Any(), resource.SecretKind, "alice-cluster-admin-kubeconfig", "alice-cluster").
					Return(nil, transient)
			},
			expected: []ClaimView{
				{
					Name:      "alice-x1b2c",
					Namespace: "alice-cluster",
					Pool:      testPool,
					Info: ClaimInfo{
						Console: constants.NotReady,
						Creds:   "Username kubeadmin:Password pw",
						Name:    "alice-x1b2c",
					},
				},
			},
		},
		{
			name:   "deployment without secret references",
			claims: []unstructured.Unstructured{testClaim("alice-x1b2c", "alice-cluster")},
			setup: func(f *mock.MockFacade) {
				cd := generic.ToUnstructured(clusterdeployment.FullBuilder("alice-cluster").Build(clusterdeployment.WithWebConsoleURL("https://console")))
				f.EXPECT().Get(gomock.Any(), resource.ClusterDeploymentKind, "alice-cluster", "alice-cluster").Return(cd, nil)
			},
			expected: []ClaimView{
				{
					Name:      "alice-x1b2c",
					Namespace: "alice-cluster",
					Pool:      testPool,
					Info:      ClaimInfo{Console: "https://console", Name: "alice-x1b2c"},
				},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			f := mock.NewMockFacade(mockCtrl)
			f.EXPECT().List(gomock.Any(), resource.ClusterClaimKind, testNamespace).Return(test.claims, nil)
			if test.setup != nil {
				test.setup(f)
			}
			r, _ := newTestResolver(t, f, ResolverOptions{Concurrency: 2})

			views := r.ResolveAll(context.Background())

			expected := test.expected
			if expected == nil {
				expected = []ClaimView{}
			}
			assert.Equal(t, expected, views)
		})
	}
}

func TestResolveAllIsRepeatable(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	f := mock.NewMockFacade(mockCtrl)
	claims := []unstructured.Unstructured{
		testClaim("alice-x1b2c", "alice-cluster"),
		testClaim("bob-k9d2a", "bob-cluster"),
		testClaim("carol-p0q1r", ""),
	}
	f.EXPECT().List(gomock.Any(), resource.ClusterClaimKind, testNamespace).Return(claims, nil).Times(2)
	expectReadyCluster(f, "alice-cluster", 2)
	expectReadyCluster(f, "bob-cluster", 2)
	r, dir := newTestResolver(t, f, ResolverOptions{})

	first := r.ResolveAll(context.Background())
	second := r.ResolveAll(context.Background())

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("views changed between resolutions (-first +second):\n%s", diff)
	}
	content, err := os.ReadFile(filepath.Join(dir, "kubeconfig-alice-x1b2c"))
	require.NoError(t, err)
	assert.Equal(t, "kubeconfig of alice-cluster", string(content))
}

func TestResolveAllListError(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	f := mock.NewMockFacade(mockCtrl)
	f.EXPECT().List(gomock.Any(), resource.ClusterClaimKind, testNamespace).Return(nil, apierrors.NewServiceUnavailable("down"))
	logger, hook := testlogger.NewLoggerWithHook()
	r := NewClaimResolver(f, testNamespace, NewKubeconfigMaterializer(t.TempDir(), logger), ResolverOptions{}, logger)

	views := r.ResolveAll(context.Background())

	assert.NotNil(t, views)
	assert.Empty(t, views)
	testlogger.AssertHookContainsMessage(t, hook, "could not list claims")
}

func TestResolveAllTimeout(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	f := mock.NewMockFacade(mockCtrl)
	claims := []unstructured.Unstructured{
		testClaim("alice-x1b2c", "alice-cluster"),
		testClaim("bob-k9d2a", "bob-cluster"),
	}
	release := make(chan struct{})
	f.EXPECT().List(gomock.Any(), resource.ClusterClaimKind, testNamespace).Return(claims, nil)
	expectReadyCluster(f, "alice-cluster", 1)
	f.EXPECT().Get(gomock.Any(), resource.ClusterDeploymentKind, "bob-cluster", "bob-cluster").
		DoAndReturn(func(ctx context.Context, kind resource.Kind, name, namespace string) (*unstructured.Unstructured, error) {
			<-release
			return nil, ctx.Err()
		})
	r, _ := newTestResolver(t, f, ResolverOptions{Timeout: 200 * time.Millisecond})

	start := time.Now()
	views := r.ResolveAll(context.Background())
	close(release)

	assert.Less(t, time.Since(start), 5*time.Second, "resolution should stop at the timeout")
	require.Len(t, views, 2)
	assert.Equal(t, expectedReadyView("alice-x1b2c", "alice-cluster"), views[0])
	assert.False(t, views[1].Ready())
	assert.Equal(t, constants.NotReady, views[1].Info.Console)
	assert.Equal(t, constants.NotReady, views[1].Info.Kubeconfig)
	assert.Equal(t, constants.NotReady, views[1].Info.Creds)
}

func TestResolveAllCache(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	f := mock.NewMockFacade(mockCtrl)
	claims := []unstructured.Unstructured{testClaim("alice-x1b2c", "alice-cluster")}
	f.EXPECT().List(gomock.Any(), resource.ClusterClaimKind, testNamespace).Return(claims, nil).Times(4)
	// Looked up once before expiry, once after and once after being forgotten.
	expectReadyCluster(f, "alice-cluster", 3)
	clock := clockwork.NewFakeClock()
	r, _ := newTestResolver(t, f, ResolverOptions{CacheTTL: time.Minute, Clock: clock})
	expected := []ClaimView{expectedReadyView("alice-x1b2c", "alice-cluster")}

	assert.Equal(t, expected, r.ResolveAll(context.Background()))
	assert.Equal(t, expected, r.ResolveAll(context.Background()), "second resolution should be served from the cache")

	clock.Advance(2 * time.Minute)
	assert.Equal(t, expected, r.ResolveAll(context.Background()))

	r.Forget("alice-x1b2c")
	assert.Equal(t, expected, r.ResolveAll(context.Background()))
}
