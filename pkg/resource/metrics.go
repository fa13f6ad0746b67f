package resource

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"k8s.io/client-go/rest"

	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	metricKubeClientRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hive_claims_manager_kube_client_requests_total",
		Help: "Counter incremented for each kube client request.",
	},
		[]string{"component", "method", "resource", "status"},
	)
)

func init() {
	metrics.Registry.MustRegister(metricKubeClientRequests)
}

// AddMetricsTransportWrapper adds a transport wrapper to the given rest config which
// exposes metrics based on the requests being made.
func AddMetricsTransportWrapper(cfg *rest.Config, component string) {
	origFunc := cfg.WrapTransport
	cfg.WrapTransport = func(rt http.RoundTripper) http.RoundTripper {
		if origFunc != nil {
			rt = origFunc(rt)
		}
		return &MetricsTripper{
			RoundTripper: rt,
			Component:    component,
		}
	}
}

// MetricsTripper is a RoundTripper implementation which tracks our metrics for client requests.
type MetricsTripper struct {
	http.RoundTripper
	Component string
}

// RoundTrip implements the http RoundTripper interface.
func (mt *MetricsTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	path, pathErr := parsePath(req.URL.Path)
	resp, err := mt.RoundTripper.RoundTrip(req)
	if err == nil && pathErr == nil {
		metricKubeClientRequests.WithLabelValues(mt.Component, req.Method, path, resp.Status).Inc()
	}
	return resp, err
}

// parsePath returns a group/version/resource string from the given path. Object names and
// namespaces are dropped to keep label cardinality bounded. Discovery style paths which do not
// address a resource return an error and are not counted.
func parsePath(path string) (string, error) {
	tokens := strings.Split(strings.TrimPrefix(path, "/"), "/")
	switch tokens[0] {
	case "api":
		if len(tokens) == 3 || len(tokens) == 4 {
			return strings.Join([]string{"core", tokens[1], tokens[2]}, "/"), nil
		}
		if len(tokens) > 4 && tokens[2] == "namespaces" {
			return strings.Join([]string{"core", tokens[1], tokens[4]}, "/"), nil
		}
	case "apis":
		if len(tokens) == 4 || len(tokens) == 5 {
			return strings.Join([]string{tokens[1], tokens[2], tokens[3]}, "/"), nil
		}
		if len(tokens) > 5 && tokens[3] == "namespaces" {
			return strings.Join([]string{tokens[1], tokens[2], tokens[5]}, "/"), nil
		}
	}
	return "", fmt.Errorf("unable to parse path for client metrics: %s", path)
}
