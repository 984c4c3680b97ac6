package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dealdesk/internal/config"
	"dealdesk/internal/judge"
	"dealdesk/internal/logging"
	"dealdesk/internal/panel"
	"dealdesk/internal/registry"
	"dealdesk/internal/runner"
	"dealdesk/internal/types"
)

const version = "0.3.0"

var (
	// Global flags
	verbose    bool
	apiKey     string
	model      string
	workspace  string
	jsonOutput bool
	watch      bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dealdesk",
	Short: "dealdesk - dynamic multi-agent pitch evaluation",
	Long: `dealdesk evaluates startup pitch submissions with a dynamically
selected panel of specialist evaluators.

Evaluators are chosen per submission from a registry of spawn predicates,
run concurrently with fault isolation, and may request deeper specialist
analysis. Their judgments are reduced to a weighted consensus, and an
accepting consensus yields bounded investment offers.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// evaluateCmd runs one submission through the full pipeline.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [submission.json]",
	Short: "Evaluate a pitch submission",
	Long: `Reads a submission JSON file, selects the evaluator panel, runs it to
quiescence, and prints the consensus report with any offers.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

// registryCmd groups registry inspection commands.
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the evaluator registry",
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all evaluator definitions",
	RunE:  runRegistryList,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dealdesk version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dealdesk %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (overrides config and env)")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", ".", "workspace directory holding .dealdesk/")

	evaluateCmd.Flags().StringVar(&model, "model", "", "judgment model (overrides config)")
	evaluateCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the full result as JSON instead of markdown")
	evaluateCmd.Flags().BoolVar(&watch, "watch-overlay", false, "hot-reload the evaluator overlay during the run")

	registryCmd.AddCommand(registryListCmd)
	rootCmd.AddCommand(evaluateCmd, registryCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if model != "" {
		cfg.LLM.Model = model
	}
	if watch {
		cfg.Registry.WatchOverlay = true
	}
	return cfg, nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Initialize(workspace); err != nil {
		logger.Warn("file logging disabled", zap.Error(err))
	}

	sub, err := loadSubmission(args[0])
	if err != nil {
		return err
	}

	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("no API key: set DEALDESK_API_KEY or --api-key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	j, err := judge.NewGeminiJudge(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		return err
	}

	p, err := panel.New(ctx, cfg, j)
	if err != nil {
		return err
	}
	defer p.Close()

	logger.Info("Evaluating submission",
		zap.String("submission", sub.ID),
		zap.String("company", sub.Name),
		zap.String("model", j.Model()))

	start := time.Now()
	result, err := p.Evaluate(ctx, sub)
	if err != nil {
		return err
	}
	logger.Info("Evaluation complete",
		zap.String("verdict", string(result.Consensus.Verdict)),
		zap.Int("offers", len(result.Offers)),
		zap.Duration("duration", time.Since(start)))

	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(panel.FormatReport(sub, result))
	return nil
}

func runRegistryList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Initialize(workspace); err != nil {
		logger.Warn("file logging disabled", zap.Error(err))
	}

	var reg *registry.Registry
	if cfg.Registry.OverlayPath != "" {
		reg, err = registry.NewWithOverlay(cfg.Registry.OverlayPath)
	} else {
		reg, err = registry.NewBuiltin()
	}
	if err != nil {
		return err
	}

	fmt.Printf("%-26s %-10s %-8s %-6s %s\n", "ID", "SELECTION", "SPAWNS", "COST", "DOMAIN")
	for _, def := range reg.All() {
		spawns := "-"
		if def.CanSpawn {
			spawns = fmt.Sprintf("%d", len(def.SpawnAllowList))
		}
		fmt.Printf("%-26s %-10s %-8s %-6.1f %s\n",
			def.ID, def.Predicate.Kind(), spawns, def.CostWeight, def.Domain)
	}
	fmt.Printf("\n%d definitions\n", reg.Len())
	return nil
}

func loadSubmission(path string) (*types.Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission %s: %w", path, err)
	}

	var sub types.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("failed to parse submission %s: %w", path, err)
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.FundingAskCents <= 0 {
		return nil, fmt.Errorf("submission %s has no funding ask (%s)",
			sub.ID, runner.FormatCents(sub.FundingAskCents))
	}
	return &sub, nil
}
