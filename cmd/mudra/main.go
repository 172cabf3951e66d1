// Package main provides the CLI entrypoint for mudra.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

var (
	configPath string

	runAddr      string
	runCamera    int
	runFPS       int
	runMirror    bool
	runDB        string
	runPlugins   string
	runWeb       string
	runTray      bool
	runMediaPipe string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	def := config.Default()

	rootCmd := &cobra.Command{
		Use:           "mudra",
		Short:         "Control media playback with hand gestures",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runRootCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")

	rootCmd.Flags().StringVar(&runAddr, "addr", def.Addr, "HTTP listen address")
	rootCmd.Flags().IntVar(&runCamera, "camera", def.Camera.DeviceID, "camera device index")
	rootCmd.Flags().IntVar(&runFPS, "fps", def.Camera.FPS, "active capture rate")
	rootCmd.Flags().BoolVar(&runMirror, "mirror", def.Camera.Mirror, "mirror frames horizontally")
	rootCmd.Flags().StringVar(&runDB, "db", def.DBPath, "event database path")
	rootCmd.Flags().StringVar(&runPlugins, "plugins", def.PluginDir, "plugin directory")
	rootCmd.Flags().StringVar(&runWeb, "web", "", "static web directory (default: search common locations)")
	rootCmd.Flags().BoolVar(&runTray, "tray", def.Tray, "show the system tray menu")
	rootCmd.Flags().StringVar(&runMediaPipe, "mediapipe-script", def.Detector.ScriptPath, "path to the MediaPipe landmark script")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newPluginsCmd())

	return rootCmd
}

// loadConfig resolves defaults, the config file, MUDRA_* variables and then
// any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	applyFlag(cmd, "addr", &cfg.Addr, runAddr)
	applyFlag(cmd, "camera", &cfg.Camera.DeviceID, runCamera)
	applyFlag(cmd, "fps", &cfg.Camera.FPS, runFPS)
	applyFlag(cmd, "mirror", &cfg.Camera.Mirror, runMirror)
	applyFlag(cmd, "db", &cfg.DBPath, runDB)
	applyFlag(cmd, "plugins", &cfg.PluginDir, runPlugins)
	applyFlag(cmd, "web", &cfg.StaticDir, runWeb)
	applyFlag(cmd, "tray", &cfg.Tray, runTray)
	applyFlag(cmd, "mediapipe-script", &cfg.Detector.ScriptPath, runMediaPipe)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyFlag[T any](cmd *cobra.Command, name string, target *T, value T) {
	if f := cmd.Flags().Lookup(name); f == nil || !f.Changed {
		return
	}
	*target = value
}

func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func runRootCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Printf("Failed to close db: %v", cerr)
		}
	}()

	plugins := plugin.NewManager(cfg.PluginDir)
	if err := plugins.Discover(); err != nil {
		return fmt.Errorf("failed to discover plugins: %w", err)
	}
	if _, err := plugins.Get(plugin.DefaultPlugin); err != nil {
		log.Printf("Default plugin %q not found in %s; unbound commands will fail", plugin.DefaultPlugin, cfg.PluginDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := plugin.NewDispatcher(plugins, plugin.NewExecutor(plugin.DefaultTimeout), st.Bindings(), plugin.DefaultQueueSize)
	go dispatcher.Run(ctx)

	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(cfg.Detector); err == nil {
		det = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		det = detector.NewMockDetector()
	}

	application := app.New(app.Config{
		Store:           st,
		Detector:        det,
		Sink:            dispatcher,
		Gesture:         cfg.Gesture,
		FacePadding:     cfg.FacePadding,
		MotionThreshold: cfg.MotionThreshold,
		IdleFPS:         cfg.IdleFPS,
		IdleAfter:       cfg.IdleAfter,
		Camera:          capture.NewCamera(cfg.Camera),
	})
	if err := application.Start(); err != nil {
		return fmt.Errorf("failed to start camera: %w", err)
	}
	defer application.Stop()

	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		log.Printf("Serving static files from: %s", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       application,
		Plugins:   plugins,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", cfg.Addr)
		errCh <- srv.ListenAndServe(cfg.Addr)
	}()

	if cfg.Tray {
		return runWithTray(ctx, cfg, application, errCh)
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}
}

// runWithTray blocks in the tray loop, which must own the main thread.
func runWithTray(ctx context.Context, cfg config.Config, application *app.App, errCh <-chan error) error {
	t := tray.New(application.IsEnabled())
	t.OnToggle(application.SetEnabled)
	t.OnSettings(func() {
		if err := openBrowser(settingsURL(cfg.Addr)); err != nil {
			log.Printf("Failed to open settings: %v", err)
		}
	})

	updates, cancel := application.SubscribeStatus()
	defer cancel()
	go t.Watch(ctx, updates)

	var serverErr error
	go func() {
		select {
		case <-ctx.Done():
		case serverErr = <-errCh:
		}
		t.Quit()
	}()

	t.Run()
	if serverErr != nil {
		return fmt.Errorf("server failed: %w", serverErr)
	}
	return nil
}

func settingsURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "127.0.0.1" + addr
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
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and the mudra data directory.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(config.XDGDataHome(), "mudra", "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
