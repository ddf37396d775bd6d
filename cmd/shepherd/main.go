package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shepherd-sched/shepherd/pkg/clustermetrics"
	"github.com/shepherd-sched/shepherd/pkg/config"
	"github.com/shepherd-sched/shepherd/pkg/events"
	"github.com/shepherd-sched/shepherd/pkg/history"
	"github.com/shepherd-sched/shepherd/pkg/kube"
	"github.com/shepherd-sched/shepherd/pkg/log"
	"github.com/shepherd-sched/shepherd/pkg/metrics"
	"github.com/shepherd-sched/shepherd/pkg/policy"
	"github.com/shepherd-sched/shepherd/pkg/scheduler"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	kubeconfigFlag string
	configFileFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shepherd",
	Short: "Shepherd - Adaptive Kubernetes scheduler for stream-processing workers",
	Long: `Shepherd places the worker pods of a stream-processing job onto cluster
nodes using live CPU metrics, and adapts its placement policy to cluster
load: first-available while idle, then round-robin and least-loaded as load
rises (default cascade), or least-loaded and a UCB1 multi-armed bandit
(bandit cascade).`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Shepherd version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	runCmd.Flags().StringVar(&kubeconfigFlag, "kubeconfig", defaultKubeconfig(),
		"Path to kubeconfig (used when not running in-cluster)")
	runCmd.Flags().StringVar(&configFileFlag, "config", "",
		"Optional YAML config file; environment variables take precedence")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduling loop",
	Long: `Run the scheduling loop against the current cluster.

The loop watches for pending pods that claim this scheduler, binds each one
to a node chosen by the active placement policy, and switches policies as
average cluster CPU crosses the configured thresholds. Statistics are
printed on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFileFlag)
		if err != nil {
			return err
		}

		log.Init(log.Config{
			Level:      cfg.LogLevel,
			JSONOutput: cfg.LogJSON,
		})
		metrics.SetVersion(Version)

		client, err := kube.NewClient(kubeconfigFlag)
		if err != nil {
			return fmt.Errorf("startup failed: %w", err)
		}
		metrics.RegisterComponent("kube", true, "connected")

		source := clustermetrics.NewSource(client, cfg.MetricsCacheTTL)

		registry := policy.NewRegistry()
		selector, err := buildSelector(cfg, registry)
		if err != nil {
			return err
		}

		hist := history.NewLog()
		broker := events.NewBroker()
		broker.Start()
		observer := metrics.NewObserver(broker)

		collector := metrics.NewCollector(source, 15*time.Second)
		collector.Start()

		sched := scheduler.NewScheduler(client, source, selector, hist, broker, scheduler.Config{
			SchedulerName:     cfg.SchedulerName,
			ComponentSelector: cfg.ComponentSelector,
			PollInterval:      cfg.PollInterval,
			ErrorBackoff:      cfg.ErrorBackoff,
		})

		printBanner(cfg, selector)
		printClusterStatus(source)

		sched.Start()
		metrics.RegisterComponent("scheduler", true, "running")

		// Serve metrics and health endpoints in the background
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/healthz", metrics.HealthHandler())
		mux.HandleFunc("/readyz", metrics.ReadinessHandler())
		httpServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		errCh := make(chan error, 1)
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()

		fmt.Println("Scheduler is running. Press Ctrl+C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			fmt.Println("\nShutting down...")
		case err := <-errCh:
			fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		}

		sched.Stop()
		collector.Stop()
		observer.Stop()
		broker.Stop()
		_ = httpServer.Close()

		fmt.Println(history.Format(hist.Summarize(), registry.Bandit().Snapshot()))

		if cfg.DecisionLogFile != "" {
			if err := hist.ExportFile(cfg.DecisionLogFile); err != nil {
				log.Errorf("failed to export decision log", err)
			}
		}
		return nil
	},
}

// buildSelector wires either a fixed policy or the configured adaptive
// cascade with thresholds from the environment.
func buildSelector(cfg *config.Config, registry policy.Registry) (*policy.Selector, error) {
	if cfg.FixedStrategy != "" {
		return policy.NewFixedSelector(registry, cfg.FixedStrategy)
	}

	var cascade policy.Cascade
	switch cfg.Cascade {
	case config.CascadeBandit:
		cascade = policy.BanditCascade(cfg.CPULowThreshold, cfg.CPUHighThreshold)
	default:
		cascade = policy.BalancedCascade(cfg.CPULowThreshold, cfg.CPUHighThreshold)
	}
	return policy.NewSelector(registry, cascade, cfg.StrategyCooldown), nil
}

func printBanner(cfg *config.Config, selector *policy.Selector) {
	fmt.Println("========================================")
	fmt.Println("  Shepherd Adaptive Scheduler")
	fmt.Println("========================================")
	fmt.Println("Configuration:")
	fmt.Printf("  Scheduler Name: %s\n", cfg.SchedulerName)
	fmt.Printf("  Component Selector: %s\n", cfg.ComponentSelector)
	fmt.Printf("  CPU Low Threshold: %.1f%%\n", cfg.CPULowThreshold)
	fmt.Printf("  CPU High Threshold: %.1f%%\n", cfg.CPUHighThreshold)
	fmt.Printf("  Strategy Cooldown: %s\n", cfg.StrategyCooldown)
	fmt.Printf("  Poll Interval: %s\n", cfg.PollInterval)
	if selector.Fixed() {
		fmt.Printf("  Mode: FIXED STRATEGY (%s)\n", selector.ActiveType())
	} else {
		fmt.Printf("  Mode: ADAPTIVE (%s cascade)\n", cfg.Cascade)
		fmt.Printf("  Initial Strategy: %s\n", selector.ActiveType())
	}
	fmt.Println("========================================")
}

func printClusterStatus(source *clustermetrics.Source) {
	fmt.Println("  CLUSTER METRICS STATUS")
	if source.Available() {
		fmt.Println("  Metrics API: AVAILABLE (using real metrics)")
	} else {
		fmt.Println("  Metrics API: NOT AVAILABLE (using estimated metrics)")
	}

	percents := source.NodePercents()
	names := make([]string, 0, len(percents))
	for name := range percents {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("  Current Node CPU Usage:")
	for _, name := range names {
		fmt.Printf("    %s: %.1f%%\n", name, percents[name])
	}
	fmt.Printf("  Cluster Average: %.1f%%\n", source.ClusterCPUPercent())
	fmt.Println("========================================")
}

func defaultKubeconfig() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.kube/config"
}
