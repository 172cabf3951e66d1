package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/plugin"
)

var (
	configWrite bool

	eventsLimit int
	eventsClear bool
	eventsStats bool
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved config as TOML",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
	cmd.Flags().BoolVar(&configWrite, "write", false, "write the defaults to the config file if it does not exist")
	return cmd
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	if configWrite {
		return writeDefaultConfig(cmd, configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.WriteTOML(cmd.OutOrStdout())
}

func writeDefaultConfig(cmd *cobra.Command, path string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer f.Close()

	if err := config.Default().WriteTOML(f); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recently emitted commands",
		Args:  cobra.NoArgs,
		RunE:  runEventsCmd,
	}
	cmd.Flags().IntVar(&eventsLimit, "limit", 20, "number of events to show (0 for all)")
	cmd.Flags().BoolVar(&eventsStats, "stats", false, "show per-command counts instead")
	cmd.Flags().BoolVar(&eventsClear, "clear", false, "delete all recorded events")
	return cmd
}

func runEventsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	if eventsClear {
		n, err := st.Events().Clear()
		if err != nil {
			return fmt.Errorf("failed to clear events: %w", err)
		}
		fmt.Fprintf(out, "deleted %d events\n", n)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if eventsStats {
		counts, err := st.Events().CountByCommand()
		if err != nil {
			return fmt.Errorf("failed to count events: %w", err)
		}
		fmt.Fprintln(tw, "COMMAND\tCOUNT")
		for _, name := range sortedKeys(counts) {
			fmt.Fprintf(tw, "%s\t%d\n", name, counts[name])
		}
		return nil
	}

	events, err := st.Events().List(eventsLimit)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	if len(events) == 0 {
		fmt.Fprintln(out, "no events recorded")
		return nil
	}

	fmt.Fprintln(tw, "TIME\tCOMMAND\tGESTURE\tDELIVERED")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", formatTime(e.CreatedAt), e.Command, e.Category, e.Delivered)
	}
	return nil
}

func newPluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List discovered plugins",
		Args:  cobra.NoArgs,
		RunE:  runPluginsCmd,
	}
}

func runPluginsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	m := plugin.NewManager(cfg.PluginDir)
	if err := m.Discover(); err != nil {
		return fmt.Errorf("failed to discover plugins: %w", err)
	}

	out := cmd.OutOrStdout()
	plugins := m.List()
	if len(plugins) == 0 {
		fmt.Fprintf(out, "no plugins in %s\n", m.PluginDir())
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintln(tw, "NAME\tVERSION\tACTIONS")
	for _, p := range plugins {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Manifest.Name, p.Manifest.Version, strings.Join(p.Manifest.Actions, ","))
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
