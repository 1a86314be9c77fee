// Package main is the bunrui CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/bunrui/internal/analysis"
	"github.com/hyperjump/bunrui/internal/cli"
	"github.com/hyperjump/bunrui/internal/config"
	"github.com/hyperjump/bunrui/internal/models"
	"github.com/hyperjump/bunrui/internal/predict"
	"github.com/hyperjump/bunrui/internal/server"
	"github.com/hyperjump/bunrui/internal/storage"
	"github.com/hyperjump/bunrui/internal/training"
	"github.com/hyperjump/bunrui/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/bunrui/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if present, so running from a project dir uses its config.
// A missing default config falls back to built-in defaults.
// Returns the config and the path that was actually loaded (empty for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		return config.LoadOrDefault(path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "train":
		runTrain()
	case "predict":
		runPredict()
	case "runs":
		runRuns()
	case "version", "--version", "-v":
		fmt.Printf("bunrui version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads the config and creates the command's logger, exiting on failure.
func setup(command, configPath string, debugFlag bool) (*config.Config, *zap.Logger) {
	cfg, resolvedConfigPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(command, debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if resolvedConfigPath == "" {
		resolvedConfigPath = "(defaults)"
	}
	logger.Debug("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)
	return cfg, logger
}

// openRunStore opens the training history database, or returns nil when history is disabled.
func openRunStore(cfg *config.Config) (storage.RunStore, error) {
	if !cfg.Training.HistoryEnabled() {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Training.HistoryPath), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return storage.NewSQLiteRunStore(cfg.Training.HistoryPath)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	port := fs.Int("port", 0, "listen port (overrides config)")
	modelsDir := fs.String("models", "", "directory holding the trained artifacts (overrides config)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup("server", *configPath, *debug)
	defer logger.Sync()
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *modelsDir != "" {
		cfg.Model.Dir = *modelsDir
	}

	predictor, err := predict.Load(cfg.Model, models.NewCategoryMap(cfg.Categories), logger)
	if err != nil {
		logger.Fatal("Failed to load model; run `bunrui train` first", zap.Error(err))
	}

	var opts []server.Option
	runs, err := openRunStore(cfg)
	if err != nil {
		logger.Warn("training history unavailable", zap.Error(err))
	} else if runs != nil {
		defer runs.Close()
		opts = append(opts, server.WithRunStore(runs))
	}

	srv := server.NewServer(predictor, &cfg.Server, logger, opts...)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runTrain() {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dataPath := fs.String("data", "", "CSV or XLSX corpus (default: training.data_dir/csv_name, extracted from the archive if needed)")
	modelsDir := fs.String("models", "", "output directory for the artifacts (overrides config)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup("train", *configPath, *debug)
	defer logger.Sync()
	if *modelsDir != "" {
		cfg.Model.Dir = *modelsDir
	}

	an, err := analysis.NewEnglishAnalyzer()
	if err != nil {
		logger.Fatal("Failed to build analyzer", zap.Error(err))
	}
	opts := training.OptionsFromConfig(cfg)
	opts.DatasetPath = *dataPath

	popts := []training.PipelineOption{training.WithLogger(logger), training.WithOutput(os.Stdout)}
	runs, err := openRunStore(cfg)
	if err != nil {
		logger.Warn("training history unavailable", zap.Error(err))
	} else if runs != nil {
		defer runs.Close()
		popts = append(popts, training.WithRunStore(runs))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if _, err := training.NewPipeline(opts, an, popts...).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Training failed: %v\n", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func printPredictUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: bunrui predict [flags] <text>\n\n")
	fmt.Fprintf(fs.Output(), "Text is all remaining arguments joined by spaces; use - to read it from stdin.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  bunrui predict Stocks rally as markets surge
  bunrui predict -output json "Late goal wins the cup final"
  bunrui predict -server http://localhost:5000 "New chip doubles battery life"
  echo "Talks resume at the border" | bunrui predict -
`)
}

func runPredict() {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = load the artifacts locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printPredictUsage(fs) }
	_ = fs.Parse(cli.ReorderArgs(os.Args[2:]))

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	text := cli.JoinArgs(fs.Args())
	if text == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read stdin: %v\n", err)
			os.Exit(1)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		printPredictUsage(fs)
		os.Exit(1)
	}

	var view cli.PredictionView
	if *serverURL != "" {
		view, err = predictViaHTTP(*serverURL, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Prediction failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger := setup("predict", *configPath, *debug)
		defer logger.Sync()
		predictor, err := predict.Load(cfg.Model, models.NewCategoryMap(cfg.Categories), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load model: %v\n", err)
			os.Exit(1)
		}
		pred, err := predictor.Predict(text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Prediction failed: %v\n", err)
			os.Exit(1)
		}
		view = cli.NewPredictionView(text, pred)
	}
	view.Text = text
	if err := cli.WritePrediction(os.Stdout, view, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func predictViaHTTP(serverURL, text string) (cli.PredictionView, error) {
	var view cli.PredictionView
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return view, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/predict", "application/json", bytes.NewReader(body))
	if err != nil {
		return view, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return view, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return view, fmt.Errorf("decode response: %w", err)
	}
	return view, nil
}

func runRuns() {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", 10, "number of runs to show (0 = all)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, logger := setup("runs", *configPath, false)
	defer logger.Sync()
	if !cfg.Training.HistoryEnabled() {
		fmt.Fprintln(os.Stderr, "Training history is disabled (training.history_path is none).")
		os.Exit(1)
	}
	if _, err := os.Stat(cfg.Training.HistoryPath); err != nil {
		_ = cli.WriteRuns(os.Stdout, nil, 0, format)
		return
	}
	runs, err := storage.NewSQLiteRunStore(cfg.Training.HistoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Open history: %v\n", err)
		os.Exit(1)
	}
	defer runs.Close()

	ctx := context.Background()
	total, err := runs.CountRuns(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count runs: %v\n", err)
		os.Exit(1)
	}
	list, err := runs.ListRuns(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List runs: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteRuns(os.Stdout, list, total, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bunrui - News headline classifier (TF-IDF + multinomial Naive Bayes)

Usage:
  bunrui train [flags]            Train the model and write the artifacts
  bunrui server [flags]           Start the HTTP inference server
  bunrui predict [flags] <text>   Classify a text
  bunrui runs [flags]             Show training history
  bunrui version                  Show version
  bunrui help                     Show this help

Train Flags:
  --config string    Config file path (default: /usr/local/etc/bunrui/config.yaml, or ./config.yaml)
  --data string      CSV or XLSX corpus (default: training.data_dir/csv_name)
  --models string    Output directory for the artifacts
  --debug            Enable debug logging

Server Flags:
  --config string    Config file path
  --port int         Listen port (default from config: 5000)
  --models string    Directory holding the trained artifacts
  --debug            Enable debug logging

Predict Flags:
  --config string    Config file path
  --server string    Server URL. Empty (default) loads the artifacts locally.
  --output string    Output format: text or json (default: text)

Runs Flags:
  --config string    Config file path
  --limit int        Number of runs to show, 0 for all (default: 10)
  --output string    Output format: text or json (default: text)

Examples:
  bunrui train
  bunrui train --data data/test.csv --models ./models
  bunrui server --port 8080
  bunrui predict "Stocks rally as markets surge"
  bunrui predict --output json "Late goal wins the cup final"
  bunrui runs --limit 5`)
}
