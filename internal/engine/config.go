package engine

import (
	"net/http"
	"time"

	twitter "github.com/anatolykoptev/go-twitter"
)

// LLM provider names accepted in Config.LLMProvider.
const (
	ProviderOpenAICompat = "openai-compat"
	ProviderOpenAI       = "openai"
	ProviderGemini       = "gemini"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	SearxngURL           string
	LLMProvider          string
	LLMAPIKey            string
	LLMAPIKeyFallbacks   []string
	LLMAPIBase           string
	LLMModel             string
	LLMTemperature       float64
	LLMMaxTokens         int
	MaxContentChars      int
	FetchTimeout         time.Duration
	SearchRPS            float64
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient  // nil = direct scrapers disabled
	DirectDDG            bool            // enable DuckDuckGo direct scraper as search fallback
	DDGRegion            string          // DuckDuckGo "kl" region, e.g. "us-en"
	DirectStartpage      bool            // enable Startpage direct scraper after DDG
	TwitterClient        *twitter.Client // nil = social person search disabled
}

var cfg = defaultConfig()

// Cfg exposes the engine configuration for sub-packages.
// Always points to the current cfg value.
var Cfg = &cfg

func defaultConfig() Config {
	return Config{
		LLMProvider:     ProviderOpenAICompat,
		DDGRegion:       DefaultDDGRegion,
		MaxContentChars: 12000,
		FetchTimeout:    10 * time.Second,
		SearchRPS:       2,
		HTTPClient:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Init initializes the engine with the given configuration.
// Zero values fall back to defaults.
func Init(c Config) {
	d := defaultConfig()
	if c.LLMProvider == "" {
		c.LLMProvider = d.LLMProvider
	}
	if c.MaxContentChars <= 0 {
		c.MaxContentChars = d.MaxContentChars
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.DDGRegion == "" {
		c.DDGRegion = d.DDGRegion
	}
	if c.SearchRPS <= 0 {
		c.SearchRPS = d.SearchRPS
	}
	if c.HTTPClient == nil {
		c.HTTPClient = d.HTTPClient
	}
	cfg = c
	Cfg = &cfg
}
