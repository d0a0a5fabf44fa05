// Command litassist is the CLI entrypoint wiring the gateway, citation
// verification, and Chain-of-Verification packages into the per-command
// pipeline described in spec.md §1-§4. Flag/subcommand parsing follows the
// teacher's cmd/goresearch/main.go stdlib-flag style, generalized from a
// single-purpose tool into a subcommand dispatcher since LitAssist exposes
// multiple named commands rather than one pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/litassist-core/internal/audit"
	"github.com/hyperifyio/litassist-core/internal/cache"
	"github.com/hyperifyio/litassist-core/internal/citation"
	"github.com/hyperifyio/litassist-core/internal/clientfactory"
	"github.com/hyperifyio/litassist-core/internal/config"
	"github.com/hyperifyio/litassist-core/internal/fetch"
	"github.com/hyperifyio/litassist-core/internal/llm"
	"github.com/hyperifyio/litassist-core/internal/verifychain"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: litassist <command> [flags]")
		fmt.Fprintf(os.Stderr, "known commands: %s\n", strings.Join(clientfactory.KnownCommands(), ", "))
		os.Exit(2)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	inputPath := fs.String("input", "", "Path to the input text (markdown/facts/etc.) for this command")
	subcommand := fs.String("level", "", "Optional subcommand/level override, e.g. verify's light or heavy")
	verbose := fs.Bool("v", false, "Verbose logging")
	useCoVe := fs.Bool("cove", false, "Run the document through Chain-of-Verification instead of the offline/online gates")
	_ = fs.Parse(os.Args[2:])

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(context.Background(), command, *subcommand, *inputPath, *useCoVe); err != nil {
		log.Error().Err(err).Msg("run failed")
		var missing *config.MissingConfigError
		if errors.As(err, &missing) {
			fmt.Fprintf(os.Stderr, "missing required configuration: %s\n", missing.Path)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, command, subcommand, inputPath string, useCoVe bool) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := audit.NewLogger(cfg.LogDir, cfg.LogFormat)
	emitter := audit.NewEventEmitter()

	if cfg.CacheDir != "" {
		pruneHTTPCache(cfg)
	}

	fetcher := fetch.NewFetcher(fetch.Config{
		UserAgent:      "litassist/1.0 (+https://github.com/hyperifyio/litassist-core)",
		JinaAPIKey:     cfg.JinaAPIKey,
		MaxRedirects:   5,
		MaxConcurrent:  8,
		AustLIIMinGap:  cfg.AustLIIMinDelay,
		AustLIIMaxGap:  cfg.AustLIIMaxDelay,
		GenericTimeout: cfg.WebFetchTimeout,
		CacheDir:       cfg.CacheDir,
	}, logger)

	cse := &citation.GoogleCSE{APIKey: cfg.CSE.APIKey, Timeout: cfg.CSETimeout}
	verifier := citation.NewVerifier(
		citation.NewCache(),
		cse,
		fetcher,
		fetcher.Pacer,
		logger,
		cfg.CSE.Legal, cfg.CSE.Gov, cfg.CSE.AustLII,
	)
	contextFetcher := citation.NewContextFetcher(cse, fetcher, logger, cfg.CSE.Gov, cfg.CSE.AustLII)

	provider := &llm.OpenRouterProvider{
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
		BaseURL:    cfg.OpenRouterBaseURL,
		APIKey:     cfg.OpenRouterAPIKey,
	}
	factory := &clientfactory.Factory{Provider: provider, Logger: logger, Verifier: verifier}

	client, err := factory.ForCommand(command, subcommand)
	if err != nil {
		return err
	}

	var bodyBytes []byte
	if inputPath != "" {
		bodyBytes, err = os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	} else {
		bodyBytes, err = readStdin()
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: string(bodyBytes)},
	}

	result, err := client.Complete(ctx, messages, llm.Overrides{})
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}

	content := result.Content
	chain := &verifychain.Chain{
		VerifyLLM:        client,
		ReasoningLLM:     client,
		QuestionsLLM:     client,
		AnswersLLM:       client,
		InconsistencyLLM: client,
		RegenerateLLM:    client,
	}

	if useCoVe {
		coveResult, err := chain.RunCoVe(ctx, command, content, verifychain.PriorContexts{}, nil, contextFetcher, logger, emitter)
		if err != nil {
			return fmt.Errorf("cove verification: %w", err)
		}
		content = coveResult.FinalContent
	} else {
		gate, err := chain.RunGates(ctx, command, content, verifier, cfg.OfflineValidation, logger)
		if err != nil {
			return fmt.Errorf("gate verification: %w", err)
		}
		if gate.Content != "" {
			content = gate.Content
		}
		if !gate.Passed {
			log.Warn().Str("stage", gate.Stage).Msg("verification gate did not pass; writing output with warnings")
		}
	}

	outPath := filepath.Join(cfg.OutputDir, command+".md")
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("out", outPath).Int("warnings", len(result.Warnings)).Msg("wrote output")
	return nil
}

// pruneHTTPCache runs the on-disk HTTP cache's age and size eviction once at
// startup, per Config.CacheMaxAge/CacheMaxBytes/CacheMaxCount. Either limit
// left at its zero value disables that dimension (see
// internal/cache.PurgeHTTPCacheByAge, EnforceHTTPCacheLimits).
func pruneHTTPCache(cfg config.Config) {
	if removed, err := cache.PurgeHTTPCacheByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
		log.Warn().Err(err).Msg("cache prune by age failed")
	} else if removed > 0 {
		log.Info().Int("removed", removed).Msg("pruned expired cache entries")
	}
	if removed, err := cache.EnforceHTTPCacheLimits(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxCount); err != nil {
		log.Warn().Err(err).Msg("cache size enforcement failed")
	} else if removed > 0 {
		log.Info().Int("removed", removed).Msg("evicted cache entries over size limit")
	}
}

func readStdin() ([]byte, error) {
	info, err := os.Stdin.Stat()
	if err != nil {
		return nil, err
	}
	if (info.Mode() & os.ModeCharDevice) != 0 {
		return nil, fmt.Errorf("no -input given and stdin is a terminal")
	}
	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(tmp)
		buf = append(buf, tmp[:n]...)
		if err != nil {
			break
		}
	}
	return buf, nil
}
