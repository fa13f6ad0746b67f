package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/openshift/hive-claims-manager/pkg/claims"
	"github.com/openshift/hive-claims-manager/pkg/constants"
)

const shutdownTimeout = 10 * time.Second

// Claims is the part of the claims service served over HTTP.
type Claims interface {
	ListPools(ctx context.Context) ([]claims.Pool, error)
	ListClaimViews(ctx context.Context) []claims.ClaimView
	CreateClaim(ctx context.Context, owner, pool string) claims.ClaimResult
	DeleteClaim(ctx context.Context, name string) error
	ListOwnerClaimNames(ctx context.Context, owner string) ([]string, error)
	DeleteAllClaimsForOwner(ctx context.Context, owner string) (claims.DeleteResult, error)
	OwnsClaim(owner, claimName string) bool
	OpenKubeconfig(fileName string) (*os.File, error)
}

// Options configures the HTTP server.
type Options struct {
	ListenAddress string
	// MutationRate limits claim creations and deletions. Zero disables the limit.
	MutationRate  rate.Limit
	MutationBurst int
	// Gatherer is served on /metrics. Defaults to the controller-runtime registry.
	Gatherer prometheus.Gatherer
}

// Server serves the claims API.
type Server struct {
	engine  *gin.Engine
	claims  Claims
	options Options
	logger  log.FieldLogger
}

// New returns a server for c. Routes are registered immediately so the result can be used as
// an http.Handler without being started.
func New(c Claims, options Options, logger log.FieldLogger) *Server {
	if options.Gatherer == nil {
		options.Gatherer = metrics.Registry
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(requestID(), requestLogger(logger), gin.Recovery())

	s := &Server{
		engine:  engine,
		claims:  c,
		options: options,
		logger:  logger,
	}

	mutating := []gin.HandlerFunc{}
	if options.MutationRate > 0 {
		mutating = append(mutating, rateLimit(rate.NewLimiter(options.MutationRate, options.MutationBurst)))
	}

	engine.GET("/healthcheck", s.healthcheck)
	engine.GET("/cluster-pools", s.listPools)
	engine.GET("/cluster-claims", s.listClaims)
	engine.GET("/all-user-claims-names", s.listOwnerClaimNames)
	engine.GET(constants.KubeconfigHandlePath+"/:filename", s.downloadKubeconfig)
	engine.POST("/claim-cluster", append(mutating, s.createClaim)...)
	engine.POST("/delete-claim", append(mutating, s.deleteClaim)...)
	engine.POST("/delete-all-claims", append(mutating, s.deleteAllClaims)...)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(options.Gatherer, promhttp.HandlerOpts{})))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Run serves until ctx is done and then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.options.ListenAddress,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", s.options.ListenAddress).Info("serving claims API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "claims API server failed")
	case <-ctx.Done():
	}

	s.logger.Info("shutting down claims API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "could not shut down claims API server")
	}
	return nil
}
