package main

import (
	"flag"
	golog "log"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client/config"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/openshift/hive-claims-manager/pkg/claims"
	hiveconfig "github.com/openshift/hive-claims-manager/pkg/config"
	"github.com/openshift/hive-claims-manager/pkg/resource"
	"github.com/openshift/hive-claims-manager/pkg/server"
	utillogrus "github.com/openshift/hive-claims-manager/pkg/util/logrus"
	"github.com/openshift/hive-claims-manager/pkg/version"
)

const (
	defaultLogLevel = "info"
	componentName   = "claims-manager"
)

type options struct {
	LogLevel      string
	ConfigFile    string
	Namespace     string
	ListenAddress string
	ScratchDir    string
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "claims-manager",
		Short: "Claims clusters from Hive ClusterPools on behalf of users.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.LogLevel)
		},
		Run: func(cmd *cobra.Command, args []string) {
			log.Infof("Version: %s", version.String())
			cfg := loadConfig(cmd, opts)
			log.WithField("namespace", cfg.Namespace).Info("managing claims")
			svc := newService(cfg)
			srv := server.New(svc, server.Options{
				ListenAddress: cfg.ListenAddress,
				MutationRate:  rate.Limit(ptr.Deref(cfg.RateLimit.RequestsPerSecond, 0)),
				MutationBurst: ptr.Deref(cfg.RateLimit.Burst, 0),
			}, log.WithField("component", "server"))

			if err := srv.Run(signals.SetupSignalHandler()); err != nil {
				log.WithError(err).Fatal("error running claims API")
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.LogLevel, "log-level", defaultLogLevel, "Log level (debug,info,warn,error,fatal)")
	flags.StringVar(&opts.ConfigFile, "config", "", "Path to the YAML configuration file")
	flags.StringVar(&opts.Namespace, "namespace", "", "Namespace holding the ClusterPools and ClusterClaims (overrides config and environment)")
	flags.StringVar(&opts.ListenAddress, "listen-address", "", "Address the API listens on (overrides config and environment)")
	flags.StringVar(&opts.ScratchDir, "scratch-dir", "", "Directory kubeconfigs are written to (overrides config and environment)")
	flags.AddGoFlagSet(flag.CommandLine)
	initializeKlog(flags)
	flag.CommandLine.Parse([]string{})

	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(newPoolsCommand(opts))
	cmd.AddCommand(newClaimCommand(opts))
	return cmd
}

func setupLogging(logLevel string) {
	// Set log level
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		log.WithError(err).Fatal("Cannot parse log level")
	}
	log.SetLevel(level)

	// Add some millisecond precision to log timestamps, useful for debugging performance.
	formatter := new(log.TextFormatter)
	formatter.TimestampFormat = "2006-01-02T15:04:05.999Z07:00"
	formatter.FullTimestamp = true
	log.SetFormatter(formatter)

	logr := utillogrus.NewLogr(log.StandardLogger(), logrVerbosity(level))
	ctrllog.SetLogger(logr)
	klog.SetLogger(logr)
	log.Debug("debug logging enabled")
}

// loadConfig reads the configuration, applies command line overrides and validates it.
func loadConfig(cmd *cobra.Command, opts *options) *hiveconfig.Config {
	cfg, err := hiveconfig.Load(opts.ConfigFile)
	if err != nil {
		log.WithError(err).Fatal("could not load configuration")
	}
	applyFlags(cmd.Flags(), opts, cfg)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	return cfg
}

// newService connects to the apiserver and returns the claims service for cfg.
func newService(cfg *hiveconfig.Config) *claims.Service {
	// Get a config to talk to the apiserver
	restConfig, err := config.GetConfig()
	if err != nil {
		log.Fatal(err)
	}
	restConfig.QPS = ptr.Deref(cfg.Kube.QPS, 50)
	restConfig.Burst = ptr.Deref(cfg.Kube.Burst, 100)

	facade, err := resource.NewForConfig(restConfig, componentName, log.WithField("component", "facade"))
	if err != nil {
		log.WithError(err).Fatal("could not create resource client")
	}
	return claims.NewService(facade, cfg.ServiceOptions(clockwork.NewRealClock()), log.StandardLogger())
}

// applyFlags overrides the configuration with flags set on the command line.
func applyFlags(flags *pflag.FlagSet, opts *options, cfg *hiveconfig.Config) {
	if flags.Changed("namespace") {
		cfg.Namespace = opts.Namespace
	}
	if flags.Changed("listen-address") {
		cfg.ListenAddress = opts.ListenAddress
	}
	if flags.Changed("scratch-dir") {
		cfg.ScratchDir = opts.ScratchDir
	}
}

// logrVerbosity only lets verbose controller-runtime and client-go output through at trace level.
func logrVerbosity(level log.Level) int {
	if level >= log.TraceLevel {
		return 4
	}
	return 0
}

func initializeKlog(flags *pflag.FlagSet) {
	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	golog.SetOutput(klogWriter{}) // Redirect all regular go log output to klog
	golog.SetFlags(0)

	go wait.Forever(klog.Flush, 5*time.Second) // Periodically flush logs
	if f := klogFlags.Lookup("logtostderr"); f != nil {
		f.Value.Set("true")
	}
	if f := klogFlags.Lookup("v"); f != nil {
		flags.AddGoFlag(f)
	}
}

type klogWriter struct{}

func (writer klogWriter) Write(data []byte) (n int, err error) {
	klog.Info(string(data))
	return len(data), nil
}

func main() {
	defer klog.Flush()
	cmd := newRootCommand()
	err := cmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}
