// Command canvasd drives the canvas layout runtime from the command
// line: it runs a single layout pass over a raw-data file, or
// benchmarks the scheduler with synthetic load.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/phanxgames/canvaslayout/internal/config"
	"github.com/phanxgames/canvaslayout/internal/layoutengine"
	"github.com/phanxgames/canvaslayout/internal/normalize"
	"github.com/phanxgames/canvaslayout/internal/orchestrator"
	"github.com/phanxgames/canvaslayout/internal/persistence"
	"github.com/phanxgames/canvaslayout/internal/runtime"
	"github.com/phanxgames/canvaslayout/internal/viewstate"
	"github.com/phanxgames/canvaslayout/internal/workerbridge"
)

var version = "dev"

func main() {
	viper.SetEnvPrefix("CANVASD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:          "canvasd",
		Short:        "Canvas layout runtime driver",
		Long:         "canvasd loads raw graph data, normalizes it, and runs the canvas layout runtime's scheduler and engines outside of a host application.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Bool(FlagVerbose, false, "enable debug logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "config file path (default: .canvasd/config.yaml)")
	rootCmd.PersistentFlags().String(FlagLogFile, "", "log file path (enables rotation)")
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("canvasd %s\n", version)
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "normalize a raw-data file and run one layout pass",
		RunE:  runRun,
	}
	runCmd.Flags().String(FlagInput, "", "raw-data JSON file (required)")
	runCmd.Flags().String(FlagEngine, "containment-grid", "layout engine name (aliases accepted)")
	runCmd.Flags().String(FlagOut, "", "write the resulting canvas document to this path instead of stdout")
	_ = runCmd.MarkFlagRequired(FlagInput)
	runCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "drive the scheduler with synthetic graphs at varying priority",
		RunE:  runBench,
	}
	benchCmd.Flags().Int(FlagSurfaces, 4, "number of concurrent surfaces")
	benchCmd.Flags().Int(FlagEntities, 200, "entities per synthetic graph")
	benchCmd.Flags().Int(FlagRounds, 3, "layout rounds per surface")
	benchCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	rootCmd.AddCommand(versionCmd, runCmd, benchCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Default().Error("command failed", "error", err)
		os.Exit(1)
	}
}

func loadRuntimeConfig(cmd *cobra.Command) (*config.RuntimeConfig, *slog.Logger, error) {
	cfg, err := config.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed(FlagLogFile) {
		cfg.LogRotation.Enabled = true
		cfg.LogRotation.Path = viper.GetString(FlagLogFile)
	}
	if viper.GetBool(FlagVerbose) {
		cfg.LogLevel = "debug"
	}
	logger := config.NewLogger(cfg.LogRotation, cfg.LogLevel)
	return cfg, logger, nil
}

func newRuntime(cfg *config.RuntimeConfig, logger *slog.Logger) *runtime.Runtime {
	local := orchestrator.New(layoutengine.NewDefaultRegistry(), orchestrator.NewEventBus(64, logger))
	var worker *orchestrator.Orchestrator
	if cfg.Worker.Enabled {
		worker = orchestrator.New(layoutengine.NewDefaultRegistry(), orchestrator.NewEventBus(64, logger))
	}
	bridge := workerbridge.New(local, worker, cfg.Worker.Enabled, cfg.Worker.Timeout, logger)
	return runtime.New(bridge, logger)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntimeConfig(cmd)
	if err != nil {
		return err
	}

	inputPath := viper.GetString(FlagInput)
	raw, err := loadRawData(inputPath)
	if err != nil {
		return err
	}

	rt := newRuntime(cfg, logger)
	const surfaceID = "canvasd-run"
	rt.SetActiveEngine(surfaceID, viper.GetString(FlagEngine))

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	result, err := rt.SetRawData(ctx, surfaceID, raw, true, viewstate.SourceExternal)
	if err != nil {
		return fmt.Errorf("run layout: %w", err)
	}
	logger.Info("layout complete", "engine", viper.GetString(FlagEngine), "metrics", result.Diagnostics["metrics"])

	data := rt.Snapshot(surfaceID)
	settings := persistence.AutoLayoutSettings{
		CollapseBehavior: cfg.AutoLayout.CollapseBehavior,
		ReflowBehavior:   cfg.AutoLayout.ReflowBehavior,
	}
	out, err := persistence.Marshal(data, settings)
	if err != nil {
		return fmt.Errorf("marshal canvas document: %w", err)
	}

	outPath := viper.GetString(FlagOut)
	if outPath == "" {
		fmt.Println(string(out))
		return nil
	}
	return os.WriteFile(outPath, out, 0644)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntimeConfig(cmd)
	if err != nil {
		return err
	}

	rt := newRuntime(cfg, logger)
	surfaces := viper.GetInt(FlagSurfaces)
	entities := viper.GetInt(FlagEntities)
	rounds := viper.GetInt(FlagRounds)

	reasons := []layoutengine.Reason{
		layoutengine.ReasonInitial,
		layoutengine.ReasonDataUpdate,
		layoutengine.ReasonUserCommand,
		layoutengine.ReasonReflow,
	}

	ctx := cmd.Context()
	type metrics struct {
		Surface string         `json:"surface"`
		Round   int            `json:"round"`
		Metrics map[string]any `json:"metrics"`
	}
	var allMetrics []metrics

	for s := 0; s < surfaces; s++ {
		surfaceID := fmt.Sprintf("bench-%d", s)
		rt.SetActiveEngine(surfaceID, "containment-grid")
		input := syntheticRawData(entities, s)
		if _, err := rt.SetRawData(ctx, surfaceID, input, false, viewstate.SourceExternal); err != nil {
			return fmt.Errorf("seed surface %s: %w", surfaceID, err)
		}

		for r := 0; r < rounds; r++ {
			reason := reasons[r%len(reasons)]
			result, err := rt.RunLayout(ctx, surfaceID, layoutengine.Options{Reason: reason})
			if err != nil {
				return fmt.Errorf("run layout on %s round %d: %w", surfaceID, r, err)
			}
			allMetrics = append(allMetrics, metrics{Surface: surfaceID, Round: r, Metrics: result.Diagnostics["metrics"].(map[string]any)})
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(allMetrics)
}

func syntheticRawData(count int, seed int) normalize.RawData {
	rng := rand.New(rand.NewSource(int64(seed) + 1))
	input := normalize.RawData{}
	rootID := "root"
	input.Entities = append(input.Entities, normalize.Entity{ID: rootID, Name: "root", Properties: map[string]any{"type": "container"}})
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("n%d", i)
		input.Entities = append(input.Entities, normalize.Entity{ID: id, Name: id, Properties: map[string]any{"type": "node"}})
		input.Relationships = append(input.Relationships, normalize.Relationship{
			ID: fmt.Sprintf("contains-%d", i), Type: "CONTAINS", FromGUID: rootID, ToGUID: id,
		})
		if i > 0 && rng.Intn(3) == 0 {
			input.Relationships = append(input.Relationships, normalize.Relationship{
				ID: fmt.Sprintf("edge-%d", i), Type: "CALLS", FromGUID: id, ToGUID: fmt.Sprintf("n%d", rng.Intn(i)),
			})
		}
	}
	return input
}
