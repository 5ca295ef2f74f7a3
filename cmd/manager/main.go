package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	securityv1beta1 "istio.io/client-go/pkg/apis/security/v1beta1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"

	meshv1alpha1 "github.com/canonical/istio-beacon-k8s-operator/pkg/apis/mesh/v1alpha1"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/components/bootstrap"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/config"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/controller"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/controller/beacon"
	"github.com/canonical/istio-beacon-k8s-operator/pkg/tracing"
)

var log = logf.Log.WithName("cmd")

func main() {
	var (
		configPath string
		devLogging bool
	)

	cmd := &cobra.Command{
		Use:   "istio-beacon-operator",
		Short: "Joins applications in a model to an Istio ambient mesh",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, devLogging)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to the operator config file.")
	cmd.Flags().BoolVar(&devLogging, "dev-logging", false, "Enable development log output.")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, devLogging bool) error {
	logf.SetLogger(zap.New(zap.UseDevMode(devLogging)))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return err
	}

	ctx := ctrl.SetupSignalHandler()

	// the Gateway and AuthorizationPolicy CRDs belong to Istio; don't start
	// reconciling before they exist
	if err := bootstrap.WaitForCRDs(ctx, restConfig, log); err != nil {
		return err
	}

	tracer, shutdownTracing, err := tracing.Setup(ctx, cfg.TracingEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Error(err, "shutting down tracing")
		}
	}()

	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return err
	}
	if err := gatewayv1.Install(scheme); err != nil {
		return err
	}
	if err := securityv1beta1.AddToScheme(scheme); err != nil {
		return err
	}
	if err := meshv1alpha1.AddToScheme(scheme); err != nil {
		return err
	}

	options := ctrl.Options{
		Scheme:                 scheme,
		Metrics:                metricsserver.Options{BindAddress: cfg.MetricsAddr},
		HealthProbeBindAddress: cfg.ProbeAddr,
		LeaderElection:         cfg.LeaderElection,
		LeaderElectionID:       "istio-beacon-operator-lock",
	}
	if len(cfg.WatchNamespace) > 0 {
		options.Cache = cache.Options{
			DefaultNamespaces: map[string]cache.Config{cfg.WatchNamespace: {}},
		}
	}

	mgr, err := ctrl.NewManager(restConfig, options)
	if err != nil {
		return err
	}

	if err := controller.AddToManager(mgr, beacon.Options{
		ReadyCheckInterval: time.Duration(cfg.ReadyCheckIntervalSeconds) * time.Second,
		Tracer:             tracer,
	}); err != nil {
		return err
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		return err
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		return err
	}

	// bind addresses are fixed at start; reloads only adjust what is safe
	err = config.Watch(ctx, configPath, log, func(next config.Config) {
		log.Info("config reloaded; readiness poll cadence applies to new reconcilers only",
			"readyCheckIntervalSeconds", next.ReadyCheckIntervalSeconds)
	})
	if err != nil {
		return err
	}

	log.Info("starting manager")
	return mgr.Start(ctx)
}
