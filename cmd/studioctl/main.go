package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"nicole-studio/internal/config"
	"nicole-studio/internal/costs"
	"nicole-studio/internal/logging"
	"nicole-studio/internal/moodboard"
	"nicole-studio/internal/providers"
	"nicole-studio/internal/registry"
)

var (
	version = "dev"
	commit  = "none"
)

type Analyzer interface {
	Analyze(ctx context.Context, images []moodboard.Image, designerContext string) (moodboard.Result, error)
}

type Generator interface {
	Generate(ctx context.Context, description string) (*moodboard.PieceImage, error)
}

type App struct {
	Out          io.Writer
	Err          io.Writer
	LoadConfig   func() (*config.Config, error)
	OpenStore    func(ctx context.Context, cfg *config.Config) (costs.Store, func() error, error)
	NewAnalyzer  func(cfg *config.Config) Analyzer
	NewGenerator func(cfg *config.Config) Generator
	ReadFile     func(name string) ([]byte, error)
	WriteFile    func(name string, data []byte) error
}

func openAIFromConfig(cfg *config.Config) *providers.OpenAI {
	return providers.NewOpenAI(providers.OpenAIOptions{
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		VisionModel:     cfg.VisionModel,
		VisionMaxTokens: cfg.VisionMaxTokens,
		ImageModel:      cfg.ImageModel,
	})
}

func DefaultApp() *App {
	return &App{
		Out:        os.Stdout,
		Err:        os.Stderr,
		LoadConfig: config.Load,
		OpenStore:  costs.OpenStore,
		NewAnalyzer: func(cfg *config.Config) Analyzer {
			return moodboard.NewAnalyzer(openAIFromConfig(cfg), nil)
		},
		NewGenerator: func(cfg *config.Config) Generator {
			return moodboard.NewGenerator(openAIFromConfig(cfg), nil)
		},
		ReadFile: os.ReadFile,
		WriteFile: func(name string, data []byte) error {
			return os.WriteFile(name, data, 0o644)
		},
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return newRootCmd(DefaultApp()).ExecuteContext(ctx)
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "studioctl",
		Short: "Operate the Nicole Studio backend from the terminal",
		Long: `studioctl inspects and resets the running cost total, lists the chat models,
and runs moodboard analysis or piece generation without the web UI.

Examples:
  studioctl cost show
  studioctl analyze board1.jpg board2.png --context "colección novias"
  studioctl generate "Anillo con perla, minimalista" -o anillo.png`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup("production", "error")
		},
	}
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)

	cmd.AddCommand(newCostCmd(app), newModelsCmd(app), newAnalyzeCmd(app), newGenerateCmd(app))
	return cmd
}

func withStore(ctx context.Context, app *App, fn func(cfg *config.Config, store costs.Store) error) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open cost store: %w", err)
	}
	defer closeStore()
	return fn(cfg, store)
}

func newCostCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Show or reset the running cost total",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the running cost total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), app, func(_ *config.Config, store costs.Store) error {
				total, err := store.Load()
				if err != nil {
					fmt.Fprintf(app.Err, "stored total unreadable (%v), showing zero\n", err)
					total = 0
				}
				fmt.Fprintf(app.Out, "Total: $%.4f (%s USD)\n", total, humanize.FtoaWithDigits(total, 6))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset the running cost total to zero",
		Long:  "Reset writes zero to the cost store. A running server keeps its in-memory total until restarted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), app, func(_ *config.Config, store costs.Store) error {
				if err := store.Save(0); err != nil {
					return fmt.Errorf("failed to reset cost total: %w", err)
				}
				fmt.Fprintln(app.Out, "Cost total reset to $0.0000")
				return nil
			})
		},
	})

	return cmd
}

func newModelsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the chat models and their prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			catalog := registry.New(cfg.DefaultChatModel)
			defaultID := catalog.Default().ID

			tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPROVIDER\tIN/1K\tOUT/1K\tVISION\t")
			for _, m := range catalog.List() {
				id := m.ID
				if id == defaultID {
					id += " (default)"
				}
				fmt.Fprintf(tw, "%s\t%s\t$%s\t$%s\t%t\t\n", id, m.Provider,
					humanize.FtoaWithDigits(m.CostPer1KInput, 6),
					humanize.FtoaWithDigits(m.CostPer1KOutput, 6),
					m.SupportsVision)
			}
			return tw.Flush()
		},
	}
}

func newAnalyzeCmd(app *App) *cobra.Command {
	var designerContext string

	cmd := &cobra.Command{
		Use:   "analyze <image>...",
		Short: "Analyze up to 3 moodboard images",
		Args:  cobra.RangeArgs(1, moodboard.MaxImages),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			images := make([]moodboard.Image, 0, len(args))
			for _, path := range args {
				data, err := app.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				img, err := moodboard.NewInlineImage(data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(app.Err, "Loaded %s (%s, %s)\n", path, img.MIMEType, humanize.Bytes(uint64(len(data))))
				images = append(images, img)
			}

			result, err := app.NewAnalyzer(cfg).Analyze(cmd.Context(), images, strings.TrimSpace(designerContext))
			if err != nil {
				return fmt.Errorf("%s: %w", moodboard.AnalyzeErrorMessage(err), err)
			}
			printResult(app.Out, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&designerContext, "context", "c", "", "collection context for the analysis")
	return cmd
}

func printResult(out io.Writer, result moodboard.Result) {
	switch r := result.(type) {
	case *moodboard.DesignResult:
		fmt.Fprintln(out, "ADN")
		fmt.Fprintf(out, "  Líneas:   %s\n", r.DNA.Lines)
		fmt.Fprintf(out, "  Texturas: %s\n", r.DNA.Textures)
		fmt.Fprintf(out, "  Energía:  %s\n", r.DNA.Mood)
		fmt.Fprintln(out, "Piezas")
		for i, p := range r.Pieces {
			fmt.Fprintf(out, "  %d. %s\n", i+1, p)
		}
	case *moodboard.NeedMoreInfoResult:
		fmt.Fprintln(out, r.WhatISee)
		for _, q := range r.Questions {
			fmt.Fprintf(out, "  - %s\n", q)
		}
	}
}

func newGenerateCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate <description>",
		Short: "Generate a product photo for one piece",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := strings.TrimSpace(args[0])
			if description == "" {
				return errors.New(moodboard.MsgMissingPiece)
			}

			ctx := cmd.Context()
			return withStore(ctx, app, func(cfg *config.Config, store costs.Store) error {
				img, err := app.NewGenerator(cfg).Generate(ctx, description)
				if err != nil {
					return fmt.Errorf("%s: %w", moodboard.GenerateErrorMessage(err), err)
				}

				accumulator := costs.NewAccumulator(ctx, store, nil)
				total := accumulator.Add(ctx, img.CostUSD)

				data, err := decodeDataURI(img.ImageURI)
				if err != nil {
					return err
				}
				if err := app.WriteFile(output, data); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}

				fmt.Fprintf(app.Out, "Saved: %s (%s)\n", output, humanize.Bytes(uint64(len(data))))
				fmt.Fprintf(app.Out, "Cost: $%.4f, total $%.4f\n", img.CostUSD, total)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "piece.png", "output filename")
	return cmd
}

func decodeDataURI(uri string) ([]byte, error) {
	_, payload, ok := strings.Cut(uri, ";base64,")
	if !ok {
		return nil, errors.New("unexpected image URI format")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return data, nil
}
