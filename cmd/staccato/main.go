// Package main provides the CLI entrypoint for staccato.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/staccato/internal/analyzer"
	"github.com/verte-zerg/staccato/internal/capture"
	"github.com/verte-zerg/staccato/internal/config"
	"github.com/verte-zerg/staccato/internal/model"
	"github.com/verte-zerg/staccato/internal/report"
	"github.com/verte-zerg/staccato/internal/session"
	"github.com/verte-zerg/staccato/internal/store"
	"github.com/verte-zerg/staccato/internal/tui"
)

const (
	defaultWindow        = 10.0
	defaultBlocks        = 100
	defaultFPS           = 30
	defaultStatsInterval = 1.0
	defaultQueueSize     = 1024
	defaultTopOffenders  = 5
	defaultMinorMs       = 50.0
	defaultModerateMs    = 100.0
	defaultSevereMs      = 150.0
	defaultWeightClean   = 1.0
	defaultWeightMinor   = 0.7
	defaultWeightMod     = 0.3
	defaultWeightSevere  = 0.0
)

var (
	monitorWindow        float64
	monitorBlocks        int
	monitorFPS           int
	monitorStatsInterval float64
	monitorQueueSize     int
	monitorTop           int
	monitorMinorMs       float64
	monitorModerateMs    float64
	monitorSevereMs      float64
	monitorWeightClean   float64
	monitorWeightMinor   float64
	monitorWeightMod     float64
	monitorWeightSevere  float64

	monitorReplayFile  string
	monitorReplaySpeed float64
	demoSeed           int64
	demoKeysPerSec     float64
	demoAdhesion       float64

	statsSince string
	statsLast  int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "staccato",
		Short:         "Keyboard timing hygiene monitor",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runMonitorCmd,
	}

	rootCmd.Flags().Float64Var(&monitorWindow, "window", defaultWindow, "view window in seconds")
	rootCmd.Flags().IntVar(&monitorBlocks, "blocks", defaultBlocks, "timeline blocks per row")
	rootCmd.Flags().IntVar(&monitorFPS, "render-fps", defaultFPS, "render frames per second")
	rootCmd.Flags().Float64Var(&monitorStatsInterval, "stats-interval", defaultStatsInterval, "stats refresh interval in seconds")
	rootCmd.Flags().IntVar(&monitorQueueSize, "queue-size", defaultQueueSize, "event queue capacity")
	rootCmd.Flags().IntVar(&monitorTop, "top-offenders", defaultTopOffenders, "worst key pairs to show")
	rootCmd.Flags().Float64Var(&monitorMinorMs, "minor-ms", defaultMinorMs, "minor adhesion threshold (ms)")
	rootCmd.Flags().Float64Var(&monitorModerateMs, "moderate-ms", defaultModerateMs, "moderate adhesion threshold (ms)")
	rootCmd.Flags().Float64Var(&monitorSevereMs, "severe-ms", defaultSevereMs, "severe adhesion threshold (ms)")
	rootCmd.Flags().Float64Var(&monitorWeightClean, "weight-clean", defaultWeightClean, "hygiene weight for clean keypresses")
	rootCmd.Flags().Float64Var(&monitorWeightMinor, "weight-minor", defaultWeightMinor, "hygiene weight for minor adhesions")
	rootCmd.Flags().Float64Var(&monitorWeightMod, "weight-moderate", defaultWeightMod, "hygiene weight for moderate adhesions")
	rootCmd.Flags().Float64Var(&monitorWeightSevere, "weight-severe", defaultWeightSevere, "hygiene weight for severe adhesions")

	rootCmd.Flags().StringVar(&monitorReplayFile, "replay", "", "feed a saved session through the live monitor")
	rootCmd.Flags().Float64Var(&monitorReplaySpeed, "speed", 1.0, "replay speed multiplier")
	rootCmd.Flags().Int64Var(&demoSeed, "seed", 0, "demo source seed (0 = random)")
	rootCmd.Flags().Float64Var(&demoKeysPerSec, "demo-kps", 0, "demo typing speed (keys per second)")
	rootCmd.Flags().Float64Var(&demoAdhesion, "demo-adhesion", -1, "demo adhesion probability (0-1)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runMonitorCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveMonitorConfig(cmd)
	if err != nil {
		return err
	}

	source, err := resolveSource()
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	sessions := session.NewManager(config.DefaultSessionDir())
	return tui.Run(cfg, source, st, sessions)
}

func resolveMonitorConfig(cmd *cobra.Command) (model.MonitorConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.MonitorConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "window", &monitorWindow, fileCfg.Monitor.WindowSeconds)
	applyIntConfig(cmd, "blocks", &monitorBlocks, fileCfg.Monitor.TimelineBlocks)
	applyIntConfig(cmd, "render-fps", &monitorFPS, fileCfg.Monitor.RenderFPS)
	applyFloatConfig(cmd, "stats-interval", &monitorStatsInterval, fileCfg.Monitor.StatsInterval)
	applyIntConfig(cmd, "queue-size", &monitorQueueSize, fileCfg.Monitor.QueueSize)
	applyIntConfig(cmd, "top-offenders", &monitorTop, fileCfg.Monitor.TopOffenders)
	applyFloatConfig(cmd, "minor-ms", &monitorMinorMs, fileCfg.Monitor.MinorMs)
	applyFloatConfig(cmd, "moderate-ms", &monitorModerateMs, fileCfg.Monitor.ModerateMs)
	applyFloatConfig(cmd, "severe-ms", &monitorSevereMs, fileCfg.Monitor.SevereMs)
	applyFloatConfig(cmd, "weight-clean", &monitorWeightClean, fileCfg.Monitor.WeightClean)
	applyFloatConfig(cmd, "weight-minor", &monitorWeightMinor, fileCfg.Monitor.WeightMinor)
	applyFloatConfig(cmd, "weight-moderate", &monitorWeightMod, fileCfg.Monitor.WeightModerate)
	applyFloatConfig(cmd, "weight-severe", &monitorWeightSevere, fileCfg.Monitor.WeightSevere)

	cfg := model.MonitorConfig{
		WindowSeconds:  monitorWindow,
		TimelineBlocks: monitorBlocks,
		RenderFPS:      monitorFPS,
		StatsInterval:  monitorStatsInterval,
		QueueSize:      monitorQueueSize,
		TopOffenders:   monitorTop,
		MinorMs:        monitorMinorMs,
		ModerateMs:     monitorModerateMs,
		SevereMs:       monitorSevereMs,
		WeightClean:    monitorWeightClean,
		WeightMinor:    monitorWeightMinor,
		WeightModerate: monitorWeightMod,
		WeightSevere:   monitorWeightSevere,
	}
	if err := validateConfig(cfg); err != nil {
		return model.MonitorConfig{}, err
	}
	return cfg, nil
}

// resolveSource picks the monitor input: a saved session when --replay is
// given, otherwise the synthetic demo source.
func resolveSource() (capture.Source, error) {
	if monitorReplayFile != "" {
		s, err := session.Load(monitorReplayFile)
		if err != nil {
			return nil, err
		}
		return capture.NewReplaySource(s, monitorReplaySpeed), nil
	}
	demoCfg := capture.DefaultDemoConfig()
	if demoSeed != 0 {
		demoCfg.Seed = demoSeed
	}
	if demoKeysPerSec > 0 {
		demoCfg.KeysPerSec = demoKeysPerSec
	}
	if demoAdhesion >= 0 {
		demoCfg.AdhesionPct = demoAdhesion
	}
	return capture.NewDemoSource(demoCfg), nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <file>",
		Short: "Analyze a saved session offline",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplayCmd,
	}
}

func runReplayCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveMonitorConfig(cmd)
	if err != nil {
		return err
	}

	s, err := session.Load(args[0])
	if err != nil {
		return err
	}
	startedAt := time.Now()
	if v, ok := s.Meta["started_at"]; ok {
		if parsed, perr := time.Parse(time.RFC3339, v); perr == nil {
			startedAt = parsed
		}
	}

	an := analyzer.New(analyzerConfigFromMonitor(cfg))
	sum := tui.Summarize(an, s, startedAt, args[0])

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if _, err := st.InsertSummary(context.Background(), sum); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	return report.RenderReport(cmd.OutOrStdout(), report.Report{Summaries: []model.SessionSummary{sum}})
}

func analyzerConfigFromMonitor(cfg model.MonitorConfig) analyzer.Config {
	out := analyzer.DefaultConfig()
	out.MinorThreshold = time.Duration(cfg.MinorMs * float64(time.Millisecond))
	out.ModerateThreshold = time.Duration(cfg.ModerateMs * float64(time.Millisecond))
	out.SevereThreshold = time.Duration(cfg.SevereMs * float64(time.Millisecond))
	out.Weights = analyzer.Weights{
		Clean:    cfg.WeightClean,
		Minor:    cfg.WeightMinor,
		Moderate: cfg.WeightModerate,
		Severe:   cfg.WeightSevere,
	}
	return out
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsSince != "" {
		if _, err := time.ParseInLocation("2006-01-02", statsSince, time.Local); err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	r, err := report.BuildReport(context.Background(), st, model.StatsConfig{Since: statsSince, Last: statsLast})
	if err != nil {
		return err
	}
	return report.RenderReport(cmd.OutOrStdout(), r)
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# staccato configuration
# Uncomment a value to enable it. CLI flags override config values.

[monitor]
# window = %.0f            # View window in seconds
# blocks = %d           # Timeline blocks per row
# render-fps = %d        # Render frames per second
# stats-interval = %.1f   # Stats refresh interval in seconds
# queue-size = %d      # Event queue capacity
# top-offenders = %d      # Worst key pairs to show
# minor-ms = %.0f          # Minor adhesion threshold (ms)
# moderate-ms = %.0f      # Moderate adhesion threshold (ms)
# severe-ms = %.0f        # Severe adhesion threshold (ms)
# weight-clean = %.1f     # Hygiene weight for clean keypresses
# weight-minor = %.1f     # Hygiene weight for minor adhesions
# weight-moderate = %.1f  # Hygiene weight for moderate adhesions
# weight-severe = %.1f    # Hygiene weight for severe adhesions
`,
		defaultWindow,
		defaultBlocks,
		defaultFPS,
		defaultStatsInterval,
		defaultQueueSize,
		defaultTopOffenders,
		defaultMinorMs,
		defaultModerateMs,
		defaultSevereMs,
		defaultWeightClean,
		defaultWeightMinor,
		defaultWeightMod,
		defaultWeightSevere,
	)
}

func validateConfig(cfg model.MonitorConfig) error {
	if cfg.WindowSeconds <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	if cfg.TimelineBlocks <= 0 {
		return fmt.Errorf("--blocks must be > 0")
	}
	if cfg.RenderFPS <= 0 {
		return fmt.Errorf("--render-fps must be > 0")
	}
	if cfg.StatsInterval <= 0 {
		return fmt.Errorf("--stats-interval must be > 0")
	}
	if cfg.QueueSize <= 0 {
		return fmt.Errorf("--queue-size must be > 0")
	}
	if cfg.TopOffenders < 0 {
		return fmt.Errorf("--top-offenders must be >= 0")
	}
	if cfg.MinorMs <= 0 || cfg.ModerateMs <= 0 || cfg.SevereMs <= 0 {
		return fmt.Errorf("adhesion thresholds must be > 0")
	}
	if cfg.MinorMs > cfg.ModerateMs || cfg.ModerateMs > cfg.SevereMs {
		return fmt.Errorf("adhesion thresholds must be ascending (minor <= moderate <= severe)")
	}
	for _, w := range []float64{cfg.WeightClean, cfg.WeightMinor, cfg.WeightModerate, cfg.WeightSevere} {
		if w < 0 || w > 1 {
			return fmt.Errorf("hygiene weights must be between 0 and 1")
		}
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
