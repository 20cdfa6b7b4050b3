// hmdinspect runs the HMD layer against a simulated tracking session and
// serves the inspector API and pose stream.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/teslashibe/go-hmdbridge/internal/config"
	"github.com/teslashibe/go-hmdbridge/internal/log"
	"github.com/teslashibe/go-hmdbridge/pkg/hmd"
	"github.com/teslashibe/go-hmdbridge/pkg/props"
	"github.com/teslashibe/go-hmdbridge/pkg/session"
	"github.com/teslashibe/go-hmdbridge/pkg/web"
	"github.com/teslashibe/go-hmdbridge/pkg/xr"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Init("info")
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.InspectAddr, "Inspector listen address")
	profile := flag.String("profile", cfg.ProfilePath, "YAML device profile overriding HMD properties")
	restarts := flag.Duration("restart-every", cfg.SimulatorRestarts, "Tear down and reinstall the simulated session this often (0 disables)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		cfg.LogLevel = "debug"
	}
	log.Init(cfg.LogLevel)

	devCfg := hmd.DefaultConfig()
	devCfg.SupersampleRatio = cfg.SupersampleRatio
	devCfg.HiddenMeshFix = cfg.HiddenMeshFix
	devCfg.HiddenMeshVerticalScale = float32(cfg.HiddenMeshVerticalScale)
	if *profile != "" {
		p, err := props.LoadProfile(*profile)
		if err != nil {
			log.Error("failed to load device profile", "path", *profile, "error", err)
			os.Exit(1)
		}
		devCfg.Profile = p
		log.Info("device profile loaded", "profile", p.Name, "properties", len(p.Properties))
	}

	guard := session.NewGuard(
		session.WithPollInterval(cfg.SessionPollInterval),
		session.WithWaitTimeout(cfg.SessionWaitTimeout),
	)
	device := hmd.New(guard, xr.StaticCapabilities{VisibilityMask: true}, devCfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sim := startSimulator(guard, cfg.SimulatorRate)
	if *restarts > 0 {
		go restartLoop(ctx, guard, sim, cfg.SimulatorRate, *restarts)
	}

	server := web.NewServer(*addr, device, web.WithPoseInterval(cfg.PoseStreamInterval))
	go func() {
		if err := server.Start(ctx); err != nil {
			log.Error("inspector stopped", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		log.Warn("inspector shutdown", "error", err)
	}
	guard.Teardown()
}

// startSimulator runs a fresh simulated session and installs it.
func startSimulator(guard *session.Guard, rate time.Duration) *xr.Simulator {
	sim := xr.NewSimulator(rate)
	go sim.Run()
	epoch := guard.Install(sim)
	log.Info("simulated session installed", "epoch", epoch)
	return sim
}

// restartLoop periodically drops the session the way a runtime restart
// does, then installs a new one.
func restartLoop(ctx context.Context, guard *session.Guard, sim *xr.Simulator, rate, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sim.Stop()
			return
		case <-ticker.C:
			sim.SetLost(true)
			guard.Teardown()
			sim.Stop()
			log.Info("simulated session lost")
			sim = startSimulator(guard, rate)
		}
	}
}
