package constants

const (
	// NotReady is the value reported for any claim field that cannot be resolved yet.
	NotReady = "Not Ready"

	// HiveAPIGroup is the API group of the Hive resources consumed by the claims manager.
	HiveAPIGroup = "hive.openshift.io"

	// HiveAPIVersion is the API version of the Hive resources consumed by the claims manager.
	HiveAPIVersion = "v1"

	// ClaimOwnerLabel is set on every ClusterClaim created by the claims manager and records the
	// user the claim was created for.
	ClaimOwnerLabel = "hive-claims-manager.openshift.io/owner"

	// KubeconfigSecretKey is the key in the admin kubeconfig secret holding the kubeconfig.
	KubeconfigSecretKey = "kubeconfig"

	// RawKubeconfigSecretKey is the key in the admin kubeconfig secret holding the unmodified
	// kubeconfig produced by the installer.
	RawKubeconfigSecretKey = "raw-kubeconfig"

	// UsernameSecretKey is the key in the admin password secret holding the user name.
	UsernameSecretKey = "username"

	// PasswordSecretKey is the key in the admin password secret holding the password.
	PasswordSecretKey = "password"

	// KubeconfigFilePrefix prefixes every materialized kubeconfig file name.
	KubeconfigFilePrefix = "kubeconfig-"

	// KubeconfigHandlePath is the URL path under which materialized kubeconfigs are served.
	KubeconfigHandlePath = "/kubeconfig"

	// NamespaceEnvVar is the environment variable naming the namespace holding pools and claims.
	NamespaceEnvVar = "HIVE_CLAIM_NAMESPACE"

	// ListenAddressEnvVar is the environment variable overriding the HTTP listen address.
	ListenAddressEnvVar = "HIVE_CLAIM_LISTEN_ADDRESS"

	// ScratchDirEnvVar is the environment variable overriding where kubeconfigs are materialized.
	ScratchDirEnvVar = "HIVE_CLAIM_SCRATCH_DIR"

	// OwnershipPolicyEnvVar is the environment variable selecting how claim ownership is matched.
	OwnershipPolicyEnvVar = "HIVE_CLAIM_OWNERSHIP_POLICY"

	// DefaultNamespace is used when no namespace has been configured.
	DefaultNamespace = "hive"

	// DefaultListenAddress is the default HTTP listen address.
	DefaultListenAddress = "0.0.0.0:5000"

	// DefaultScratchDir is the default directory for materialized kubeconfigs.
	DefaultScratchDir = "/tmp"

	// DefaultClaimSuffixLength is the number of random characters appended to claim names.
	DefaultClaimSuffixLength = 5

	// DefaultResolveConcurrency bounds the number of claims resolved in parallel.
	DefaultResolveConcurrency = 10
)
