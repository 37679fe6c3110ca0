package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/perimetra/ztcore/pkg/audit"
	"github.com/perimetra/ztcore/pkg/config"
	"github.com/perimetra/ztcore/pkg/engine"
	"github.com/perimetra/ztcore/pkg/obs"
	"github.com/perimetra/ztcore/pkg/policy"
	"github.com/perimetra/ztcore/pkg/risk"
	"github.com/perimetra/ztcore/pkg/segment"
	"github.com/perimetra/ztcore/pkg/server"
	"github.com/perimetra/ztcore/pkg/server/endpoints"
	"github.com/perimetra/ztcore/pkg/server/middleware"
	"github.com/perimetra/ztcore/pkg/trust"
	"github.com/perimetra/ztcore/pkg/verify"
)

func defaultBindAddress() string {
	if addr := os.Getenv("ZTCORE_BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8090"
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the ztcore decision engine server",
	Long: `Run the ztcore decision engine server.

Policies and segments are loaded from the files named in the configuration.
When ZTCORE_POLICY_FILE is set the file is also watched and hot reloaded on
change. Database migrations run on startup when DATABASE_URL is set; use
--no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Get()
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate && getDatabaseURL() != "" {
			log.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		obs.Init()

		auditStore, err := audit.NewStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to open audit store: %v\n", err)
			os.Exit(1)
		}
		emitter := audit.NewEmitter(audit.NewLogger(), auditStore)
		defer emitter.Close()

		trustEngine := trust.NewEngine(trust.NewStore(), trust.DefaultWeights(), cfg.TrustTTLDuration())
		riskAssessor := risk.NewAssessor(cfg.HighRiskOperations, cfg.RiskConfidence)

		policyStore := policy.NewStore()
		if cfg.PolicyFile != "" {
			n, err := policyStore.LoadFile(cfg.PolicyFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Unable to load policy file: %v\n", err)
				os.Exit(1)
			}
			emitter.Emit(audit.PolicyLoadEvent{Source: cfg.PolicyFile, Count: n})
			log.Printf("Loaded %d policies from %s\n", n, cfg.PolicyFile)
		}
		policyEngine := policy.NewEngine(policyStore)

		segmentManager := segment.NewManager(segment.DefaultEnforcers())
		if cfg.SegmentFile != "" {
			n, err := segmentManager.LoadFile(context.Background(), cfg.SegmentFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Unable to load segment file: %v\n", err)
				os.Exit(1)
			}
			log.Printf("Loaded %d segments from %s\n", n, cfg.SegmentFile)
		}

		decisions := engine.NewDecisionStore(cfg.DecisionHistoryLimit, cfg.DecisionRetentionDuration())
		archive, err := engine.NewArchive()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to open decision archive: %v\n", err)
			os.Exit(1)
		}

		coordinator := engine.NewCoordinator(
			trustEngine, riskAssessor, policyEngine, segmentManager,
			decisions, archive, emitter,
		)

		verifier := verify.NewVerifier(trustEngine, cfg.AnomalyTolerance)
		scheduler := verify.NewScheduler(verifier, trustEngine, emitter, cfg.VerificationIntervalDuration())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		scheduler.Start(ctx)
		defer scheduler.Stop()

		startPruner(ctx, decisions, cfg.DecisionRetentionDuration())

		if cfg.PolicyFile != "" {
			if err := watchPolicyFile(ctx, policyStore, emitter, cfg.PolicyFile); err != nil {
				fmt.Fprintf(os.Stderr, "Unable to watch policy file: %v\n", err)
				os.Exit(1)
			}
		}

		session := middleware.NewSessionAuthenticator()
		if session == nil {
			log.Println("ZTCORE_SESSION_KEY not set, session verification disabled")
		}

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		s := server.NewServer(
			coordinator, trustEngine, verifier, segmentManager,
			policyStore, decisions, cfg, session, host, port,
		)
		s.Emitter = emitter

		endpoints.RegisterAll(s)

		go func() {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			log.Println("Shutting down...")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			_ = s.Shutdown(shutdownCtx)
			cancel()
		}()

		log.Printf("Running server at http://%s:%s...\n", host, port)
		if err := s.Start(); err != nil {
			log.Println(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

// startPruner sweeps expired decisions on a tenth of the retention window.
func startPruner(ctx context.Context, decisions *engine.DecisionStore, retention time.Duration) {
	if retention <= 0 {
		return
	}
	interval := retention / 10
	if interval < time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := decisions.Prune(now); n > 0 {
					log.Printf("Pruned %d expired decisions\n", n)
				}
			}
		}
	}()
}

// watchPolicyFile hot reloads the policy table when the file changes. A file
// that fails validation leaves the previous table in place.
func watchPolicyFile(ctx context.Context, store *policy.Store, emitter *audit.Emitter, filename string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filename); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch file %s: %w", filename, err)
	}

	log.Printf("Watching %s for policy changes\n", filename)

	go func() {
		defer func() { _ = watcher.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
					n, err := store.LoadFile(filename)
					if err != nil {
						fmt.Fprintf(os.Stderr, "Error reloading policy: %v\n", err)
						continue
					}
					emitter.Emit(audit.PolicyLoadEvent{Source: filename, Count: n})
					log.Printf("[%s] Reloaded %d policies\n", time.Now().Format(time.RFC3339), n)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}
		}
	}()

	return nil
}
