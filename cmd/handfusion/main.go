package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/handfusion/internal/app"
	"github.com/ayusman/handfusion/internal/config"
	"github.com/ayusman/handfusion/internal/depth"
	"github.com/ayusman/handfusion/internal/emitter"
	"github.com/ayusman/handfusion/internal/fusion"
	"github.com/ayusman/handfusion/internal/logger"
	"github.com/ayusman/handfusion/internal/metrics"
	"github.com/ayusman/handfusion/internal/sensor"
	"github.com/ayusman/handfusion/internal/server"
	"github.com/ayusman/handfusion/internal/skin"
	"github.com/ayusman/handfusion/internal/store"
	"github.com/ayusman/handfusion/internal/tray"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	profileName := flag.String("profile", "", "name of a stored tuning profile to apply")
	withTray := flag.Bool("tray", false, "show the system tray menu")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "handfusion: failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "handfusion: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, log, *profileName, *withTray); err != nil {
		log.Error("handfusion failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, profileName string, withTray bool) error {
	dataDir, err := dataDir()
	if err != nil {
		return err
	}

	storePath := cfg.Store.Path
	if storePath == "" {
		storePath = filepath.Join(dataDir, "handfusion.db")
	}
	st, err := store.New(storePath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	var profileID string
	if profileName != "" {
		p, err := st.Profiles().GetByName(profileName)
		if err != nil {
			return fmt.Errorf("failed to load profile %q: %w", profileName, err)
		}
		if err := cfg.ApplyProfile(p); err != nil {
			return err
		}
		profileID = p.ID
		log.Info("profile applied", "profile", p.Name, "min_depth", p.MinDepth, "max_depth", p.MaxDepth)
	}

	met := metrics.New()

	skinTable := loadSkinModel(cfg.SkinModelPath, log)
	depthTable, err := depth.NewTable(cfg.Sensor.MinDepth, cfg.Sensor.MaxDepth)
	if err != nil {
		return err
	}

	source := sensor.NewSynthetic(cfg.Scene())
	orch, err := fusion.New(&fusion.Session{
		DepthTable:  depthTable,
		SkinTable:   skinTable,
		Projector:   source.Projector(),
		DepthWidth:  cfg.Sensor.DepthWidth,
		DepthHeight: cfg.Sensor.DepthHeight,
		ColorWidth:  cfg.Sensor.ColorWidth,
		ColorHeight: cfg.Sensor.ColorHeight,
	}, cfg.Fusion())
	if err != nil {
		return err
	}
	orch.SetLogger(logger.Component(log, "fusion"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionID := uuid.New().String()
	hub := server.NewHub()

	var observer app.Observer
	if cfg.MQTT.Broker != "" {
		sink, err := emitter.Connect(emitter.MQTTConfig{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			QoS:      cfg.MQTT.QoS,
		}, log)
		if err != nil {
			log.Warn("mqtt unavailable, hand events disabled", "broker", cfg.MQTT.Broker, "error", err)
		} else {
			defer sink.Close()
			em := emitter.New(sink, cfg.MQTT.TopicPrefix, sessionID, log)
			go em.Run(ctx)
			observer = em
		}
	}

	a, err := app.New(app.Config{
		Source:       source,
		Orchestrator: orch,
		Publisher:    hub,
		Observer:     observer,
		Metrics:      met,
		Store:        st,
		Logger:       log,
		SessionID:    sessionID,
		ProfileID:    profileID,
		FPS:          cfg.Sensor.FPS,
		IdleFPS:      cfg.Sensor.IdleFPS,
		JPEGQuality:  cfg.Server.JPEGQuality,
	})
	if err != nil {
		return err
	}

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir(dataDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Hub:       hub,
		Metrics:   met,
		Logger:    log,
		Status:    func() any { return a.Status() },
		Control:   a,
	})

	go func() {
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			cancel()
		}
	}()

	if err := a.Start(); err != nil {
		return fmt.Errorf("failed to start tracking: %w", err)
	}

	log.Info("handfusion started",
		"addr", cfg.Server.Addr,
		"session", sessionID,
		"static_dir", staticDir,
		"store", storePath,
		"degraded", skinTable == nil,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Info("shutdown signal received")
		case <-a.Done():
			log.Info("tracking loop finished")
		case <-ctx.Done():
		}
		cancel()
	}()

	if withTray {
		runTray(ctx, cancel, a, hub, viewerURL(cfg.Server.Addr), log)
	}
	<-ctx.Done()

	a.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	log.Info("handfusion stopped")
	return nil
}

// runTray shows the tray menu and blocks until it quits. The tray must run
// on the main goroutine.
func runTray(ctx context.Context, cancel context.CancelFunc, a *app.App, hub *server.Hub, url string, log *slog.Logger) {
	tr := tray.New()
	tr.OnToggle(a.SetEnabled)
	tr.OnOpen(func() {
		if err := openBrowser(url); err != nil {
			log.Warn("failed to open browser", "url", url, "error", err)
		}
	})
	tr.OnQuit(cancel)

	summaries, unsubscribe := hub.Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				tr.Quit()
				return
			case s := <-summaries:
				tr.SetHands(s)
			}
		}
	}()

	tr.Run()
}

// loadSkinModel loads the skin likelihood table. A missing or unreadable
// model is not fatal: the session runs without skin classification.
func loadSkinModel(path string, log *slog.Logger) *skin.Table {
	if path == "" {
		log.Warn("no skin model configured, skin classification disabled")
		return nil
	}
	table, err := skin.LoadFile(path)
	if err != nil {
		log.Warn("skin model unavailable, skin classification disabled", "path", path, "error", err)
		return nil
	}
	log.Info("skin model loaded", "path", path)
	return table
}

// dataDir returns ~/.handfusion, creating it if needed.
func dataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".handfusion")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and the data directory.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
