package claims

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	corev1 "k8s.io/api/core/v1"

	"github.com/openshift/hive-claims-manager/pkg/constants"
)

// KubeconfigMaterializer writes the admin kubeconfig of claimed clusters to a scratch directory
// so that it can be downloaded later.
type KubeconfigMaterializer struct {
	dir    string
	logger log.FieldLogger
}

// NewKubeconfigMaterializer returns a materializer writing into dir.
func NewKubeconfigMaterializer(dir string, logger log.FieldLogger) *KubeconfigMaterializer {
	return &KubeconfigMaterializer{
		dir:    dir,
		logger: logger.WithField("component", "kubeconfig"),
	}
}

// FileName returns the name of the materialized kubeconfig of the claim.
func FileName(claimName string) string {
	return constants.KubeconfigFilePrefix + claimName
}

func handle(claimName string) string {
	return path.Join(constants.KubeconfigHandlePath, FileName(claimName))
}

func (m *KubeconfigMaterializer) path(claimName string) string {
	return filepath.Join(m.dir, FileName(claimName))
}

// Materialize writes the kubeconfig held by secret for the claim and returns the download
// handle. A previous materialization of the same claim is replaced.
func (m *KubeconfigMaterializer) Materialize(claimName string, secret *corev1.Secret) (string, error) {
	if err := validClaimName(claimName); err != nil {
		return "", err
	}
	content, ok := secret.Data[constants.KubeconfigSecretKey]
	if !ok {
		content, ok = secret.Data[constants.RawKubeconfigSecretKey]
	}
	if !ok || len(content) == 0 {
		return "", errors.Errorf("secret %s/%s does not contain a kubeconfig", secret.Namespace, secret.Name)
	}

	tmp, err := os.CreateTemp(m.dir, "."+FileName(claimName)+"-*")
	if err != nil {
		return "", errors.Wrap(err, "could not create kubeconfig file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "could not write kubeconfig file")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "could not write kubeconfig file")
	}
	if err := os.Rename(tmp.Name(), m.path(claimName)); err != nil {
		return "", errors.Wrap(err, "could not move kubeconfig file in place")
	}
	m.logger.WithField("claim", claimName).Debug("materialized kubeconfig")
	return handle(claimName), nil
}

// Handle returns the download handle of the claim's kubeconfig, or NotReady when it has not
// been materialized.
func (m *KubeconfigMaterializer) Handle(claimName string) string {
	if validClaimName(claimName) != nil {
		return constants.NotReady
	}
	if _, err := os.Stat(m.path(claimName)); err != nil {
		return constants.NotReady
	}
	return handle(claimName)
}

// Open opens a materialized kubeconfig by file name, as found in the last element of a handle.
func (m *KubeconfigMaterializer) Open(fileName string) (*os.File, error) {
	claimName, ok := strings.CutPrefix(fileName, constants.KubeconfigFilePrefix)
	if !ok {
		return nil, errors.Errorf("invalid kubeconfig file name %q", fileName)
	}
	if err := validClaimName(claimName); err != nil {
		return nil, err
	}
	return os.Open(m.path(claimName))
}

// Remove deletes the claim's kubeconfig. Removing a kubeconfig which was never materialized
// is not an error.
func (m *KubeconfigMaterializer) Remove(claimName string) {
	if validClaimName(claimName) != nil {
		return
	}
	if err := os.Remove(m.path(claimName)); err != nil && !os.IsNotExist(err) {
		m.logger.WithError(err).WithField("claim", claimName).Warn("could not remove kubeconfig")
	}
}

func validClaimName(claimName string) error {
	if claimName == "" || claimName == "." || claimName == ".." || strings.ContainsAny(claimName, `/\`) {
		return errors.Errorf("invalid claim name %q", claimName)
	}
	return nil
}
