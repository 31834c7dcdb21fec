// go_connect: evidence-gated connection discovery MCP server.
//
// Exposes two MCP tools: find_connections, connection_runs.
// Runs as HTTP MCP server (default, or `serve`) or as a one-shot CLI (`run`).
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	twitter "github.com/anatolykoptev/go-twitter"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_connect/internal/connections"
	"github.com/anatolykoptev/go_connect/internal/connserver"
	"github.com/anatolykoptev/go_connect/internal/engine"
	"github.com/anatolykoptev/go_connect/internal/store"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired dependencies shared by serve and run.
type app struct {
	finder *connections.Finder
	runs   store.RunStore // nil when the store failed to open
}

func (a *app) Close() {
	if a.runs != nil {
		_ = a.runs.Close()
	}
}

func serve(ctx context.Context) error {
	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	slog.Info("starting go_connect",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_connect",
		Version: version,
	}, nil)

	connserver.RegisterTools(server, connserver.NewTools(a.finder, a.runs))
	slog.Info("tools registered", slog.Int("count", connserver.ToolCount))

	return mcpserver.Run(server, mcpserver.Config{
		Name:         "go_connect",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	})
}

func initApp(ctx context.Context) (*app, error) {
	c := initEngine()

	completer, err := engine.NewLLM(ctx, c)
	if err != nil {
		return nil, err
	}

	finder := connections.NewFinder(completer, engine.NewWebSearcher(c), engine.NewPageFetcher(c))

	runs, err := store.Open(ctx, env.Str("DATABASE_URL", ""), env.Str("SQLITE_PATH", store.DefaultSQLitePath()))
	if err != nil {
		slog.Warn("run store init failed, history disabled", slog.Any("error", err))
		return &app{finder: finder}, nil
	}
	slog.Info("run store initialized")
	return &app{finder: finder, runs: runs}, nil
}

func initEngine() engine.Config {
	c := engine.Config{
		SearxngURL:           env.Str("SEARXNG_URL", "http://127.0.0.1:8888"),
		LLMProvider:          env.Str("LLM_PROVIDER", engine.ProviderOpenAICompat),
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.1),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 16384),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", 12000),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 10*time.Second),
		SearchRPS:            env.Float("SEARCH_RPS", 2),
		DirectDDG:            boolEnv("DIRECT_DDG", true),
		DDGRegion:            env.Str("DDG_REGION", engine.DefaultDDGRegion),
		DirectStartpage:      boolEnv("DIRECT_STARTPAGE", false),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	// Social person search (optional, guest mode when no accounts are configured).
	if boolEnv("TWITTER_SEARCH", false) {
		accounts := twitter.ParseAccounts(env.Str("TWITTER_ACCOUNTS", ""))
		openCount := 2
		if len(accounts) > 0 {
			openCount = 0
		}
		tw, err := twitter.NewClient(twitter.ClientConfig{
			Accounts:         accounts,
			OpenAccountCount: openCount,
		})
		if err != nil {
			slog.Warn("twitter client init failed, social person search disabled", slog.Any("error", err))
		} else {
			c.TwitterClient = tw
			slog.Info("twitter client ready", slog.Int("pool_size", tw.Pool().Size()))
		}
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)

	return *engine.Cfg
}

func boolEnv(key string, def bool) bool {
	v, err := strconv.ParseBool(env.Str(key, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return v
}
