package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the chat service.
type Config struct {
	General       GeneralConfig       `mapstructure:"general"`
	Server        ServerConfig        `mapstructure:"server"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Agents        AgentsConfig        `mapstructure:"agents"`
	Retrieval     RetrievalConfig     `mapstructure:"retrieval"`
	Vector        VectorConfig        `mapstructure:"vector"`
	WebSearch     WebSearchConfig     `mapstructure:"web_search"`
	Memory        MemoryConfig        `mapstructure:"memory"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Ingest        IngestConfig        `mapstructure:"ingest"`
	Telemetry     TelemetryConfig     `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig configures the completion/embedding provider.
type LLMConfig struct {
	Provider        string        `mapstructure:"provider"` // openai
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	CompletionModel string        `mapstructure:"completion_model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// AgentConfig is the per-agent configuration: trace name, prompt reference
// and an optional model override.
type AgentConfig struct {
	Name          string `mapstructure:"name"`
	PromptID      string `mapstructure:"prompt_id"`
	PromptLabel   string `mapstructure:"prompt_label"`
	PromptVersion int    `mapstructure:"prompt_version"`
	Model         string `mapstructure:"model"`
}

// AgentsConfig contains settings shared by all agents plus per-agent blocks.
type AgentsConfig struct {
	MaxHistory        int `mapstructure:"max_history"`
	MaxClarifications int `mapstructure:"max_clarifications"`
	MaxToolIterations int `mapstructure:"max_tool_iterations"`

	Orchestrator  AgentConfig `mapstructure:"orchestrator"`
	Clarification AgentConfig `mapstructure:"clarification"`
	Research      AgentConfig `mapstructure:"research"`
	Synthesis     AgentConfig `mapstructure:"synthesis"`
}

// RetrievalConfig tunes document retrieval.
type RetrievalConfig struct {
	TopK          int     `mapstructure:"top_k"`
	MinSimilarity float64 `mapstructure:"min_similarity"`
	Hybrid        bool    `mapstructure:"hybrid"` // BM25 + vector with RRF fusion
}

// VectorConfig selects and configures the vector store.
type VectorConfig struct {
	Provider   string `mapstructure:"provider"` // qdrant | chromem
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	VectorSize int    `mapstructure:"vector_size"`
	Distance   string `mapstructure:"distance"`
	Path       string `mapstructure:"path"` // chromem persistence dir; empty = in-memory
}

// WebSearchConfig selects and configures the web search provider.
type WebSearchConfig struct {
	Provider     string        `mapstructure:"provider"` // serper | brave | tavily
	APIKey       string        `mapstructure:"api_key"`
	MaxResults   int           `mapstructure:"max_results"`
	FetchContent bool          `mapstructure:"fetch_content"` // enrich thin snippets via web_fetch
	Fetcher      string        `mapstructure:"fetcher"`       // static | chromedp
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// MemoryConfig selects and configures the checkpoint store.
type MemoryConfig struct {
	Provider string        `mapstructure:"provider"` // redis | inmemory | none
	TTL      time.Duration `mapstructure:"ttl"`
	Redis    RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains redis connection settings.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ObservabilityConfig configures generation tracing and prompt management.
type ObservabilityConfig struct {
	Provider string         `mapstructure:"provider"` // langfuse | none
	Langfuse LangfuseConfig `mapstructure:"langfuse"`
}

// LangfuseConfig contains langfuse API settings.
type LangfuseConfig struct {
	Host      string        `mapstructure:"host"`
	PublicKey string        `mapstructure:"public_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// IngestConfig tunes the PDF ingestion pipeline.
type IngestConfig struct {
	ChunkSize    int    `mapstructure:"chunk_size"`    // tokens per chunk
	ChunkOverlap int    `mapstructure:"chunk_overlap"` // tokens shared between neighbours
	Encoding     string `mapstructure:"encoding"`      // tiktoken encoding name
	BatchSize    int    `mapstructure:"batch_size"`    // embeddings per provider call
}

// TelemetryConfig contains metrics settings.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func (c *Config) Validate() error {
	if c.Agents.MaxClarifications < 0 {
		return fmt.Errorf("agents.max_clarifications must be >= 0")
	}
	if c.Agents.MaxHistory <= 0 {
		return fmt.Errorf("agents.max_history must be > 0")
	}
	if c.Retrieval.TopK < 1 || c.Retrieval.TopK > 20 {
		return fmt.Errorf("retrieval.top_k must be between 1 and 20")
	}
	if c.Retrieval.MinSimilarity < 0 || c.Retrieval.MinSimilarity > 1 {
		return fmt.Errorf("retrieval.min_similarity must be within [0,1]")
	}
	return nil
}

// LoadConfig reads configuration from the given file (or ./config.yaml when
// empty), applying defaults and PAPERCHAT_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PAPERCHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults + env are enough to start.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.log_level", "info")
	v.SetDefault("server.address", ":8000")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.completion_model", "gpt-4o-mini")
	v.SetDefault("llm.embedding_model", "text-embedding-3-small")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("agents.max_history", 10)
	v.SetDefault("agents.max_clarifications", 2)
	v.SetDefault("agents.max_tool_iterations", 5)
	v.SetDefault("agents.orchestrator.name", "orchestrator")
	v.SetDefault("agents.orchestrator.prompt_id", "orchestrator_intent")
	v.SetDefault("agents.clarification.name", "clarification")
	v.SetDefault("agents.clarification.prompt_id", "clarification")
	v.SetDefault("agents.research.name", "research")
	v.SetDefault("agents.research.prompt_id", "agent_research")
	v.SetDefault("agents.synthesis.name", "synthesis")
	v.SetDefault("agents.synthesis.prompt_id", "synthesis")

	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.min_similarity", 0.5)
	v.SetDefault("retrieval.hybrid", false)

	v.SetDefault("vector.provider", "qdrant")
	v.SetDefault("vector.host", "localhost")
	v.SetDefault("vector.port", 6333)
	v.SetDefault("vector.collection", "pdf_documents")
	v.SetDefault("vector.vector_size", 1536)
	v.SetDefault("vector.distance", "Cosine")

	v.SetDefault("web_search.provider", "serper")
	v.SetDefault("web_search.max_results", 5)
	v.SetDefault("web_search.fetch_content", false)
	v.SetDefault("web_search.fetcher", "static")
	v.SetDefault("web_search.fetch_timeout", 15*time.Second)

	v.SetDefault("memory.provider", "inmemory")
	v.SetDefault("memory.ttl", 24*time.Hour)
	v.SetDefault("memory.redis.host", "localhost")
	v.SetDefault("memory.redis.port", "6379")
	v.SetDefault("memory.redis.timeout", 5*time.Second)

	v.SetDefault("observability.provider", "none")
	v.SetDefault("observability.langfuse.host", "https://cloud.langfuse.com")
	v.SetDefault("observability.langfuse.timeout", 10*time.Second)

	v.SetDefault("ingest.chunk_size", 512)
	v.SetDefault("ingest.chunk_overlap", 64)
	v.SetDefault("ingest.encoding", "cl100k_base")
	v.SetDefault("ingest.batch_size", 64)

	v.SetDefault("telemetry.enabled", true)
}
