package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string            `mapstructure:"port"`
	Mode        string            `mapstructure:"mode"`
	Log         LogConfig         `mapstructure:"log"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	LLM         ProviderConfig    `mapstructure:"llm"`
	Embedding   ProviderConfig    `mapstructure:"embedding"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	OCR         OCRConfig         `mapstructure:"ocr"`
	Chunker     ChunkerConfig     `mapstructure:"chunker"`
	Chat        ChatConfig        `mapstructure:"chat"`
	MongoDB     MongoDBConfig     `mapstructure:"mongodb"`
	Auth        AuthConfig        `mapstructure:"auth"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	ChatModel      string `mapstructure:"chat_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

type GeminiConfig struct {
	APIKeys        []string `mapstructure:"api_keys"`
	ChatModel      string   `mapstructure:"chat_model"`
	EmbeddingModel string   `mapstructure:"embedding_model"`
}

// ProviderConfig names which backend serves a capability: "openai" or "gemini".
type ProviderConfig struct {
	Provider string `mapstructure:"provider"`
}

type VectorStoreConfig struct {
	Type     string `mapstructure:"type"` // weaviate or chromem
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	APIKey   string `mapstructure:"api_key"`
	Path     string `mapstructure:"path"`
	Compress bool   `mapstructure:"compress"`
}

// Address returns host:port, keeping any scheme prefix on the host.
func (c VectorStoreConfig) Address() string {
	if c.Port == 0 {
		return c.Host
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type OCRConfig struct {
	TesseractCmd string `mapstructure:"tesseract_cmd"`
	PopplerPath  string `mapstructure:"poppler_path"`
	Language     string `mapstructure:"language"`
	PDFStrategy  string `mapstructure:"pdf_strategy"` // auto, text or ocr
	DPI          int    `mapstructure:"dpi"`
	TempDir      string `mapstructure:"temp_dir"`
}

type ChunkerConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

type ChatConfig struct {
	HistoryLimit   int `mapstructure:"history_limit"`
	MaxMessageSize int `mapstructure:"max_message_size"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type AuthConfig struct {
	AdminSecret string `mapstructure:"admin_secret"`
}

var envBindings = map[string]string{
	"openai.api_key":       "OPENAI_API_KEY",
	"gemini.api_keys":      "GEMINI_API_KEYS",
	"vector_store.host":    "VECTOR_DB_HOST",
	"vector_store.port":    "VECTOR_DB_PORT",
	"vector_store.api_key": "WEAVIATE_APIKEY",
	"ocr.tesseract_cmd":    "TESSERACT_CMD",
	"ocr.poppler_path":     "POPPLER_PATH",
	"mongodb.uri":          "MONGODB_URI",
	"auth.admin_secret":    "JWT_SECRET_ADMIN",
	"port":                 "PORT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("mode", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.chat_model", "gpt-4o")
	v.SetDefault("openai.embedding_model", "text-embedding-ada-002")
	v.SetDefault("gemini.api_keys", []string{})
	v.SetDefault("gemini.chat_model", "gemini-1.5-flash")
	v.SetDefault("gemini.embedding_model", "text-embedding-004")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("embedding.provider", "openai")

	v.SetDefault("vector_store.type", "weaviate")
	v.SetDefault("vector_store.host", "http://localhost")
	v.SetDefault("vector_store.port", 8080)
	v.SetDefault("vector_store.api_key", "")
	v.SetDefault("vector_store.path", "")
	v.SetDefault("vector_store.compress", false)

	v.SetDefault("ocr.tesseract_cmd", "tesseract")
	v.SetDefault("ocr.poppler_path", "")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.pdf_strategy", "auto")
	v.SetDefault("ocr.dpi", 200)
	v.SetDefault("ocr.temp_dir", "")

	v.SetDefault("chunker.chunk_size", 10000)
	v.SetDefault("chunker.chunk_overlap", 1000)

	v.SetDefault("chat.history_limit", 50)
	v.SetDefault("chat.max_message_size", 512*1024)

	v.SetDefault("mongodb.uri", "")
	v.SetDefault("mongodb.database", "manualbot")
	v.SetDefault("auth.admin_secret", "")
}

// LoadConfig reads configPath (optional) and overlays environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.Chunker.ChunkSize <= 0 {
		return fmt.Errorf("chunker.chunk_size must be positive, got %d", c.Chunker.ChunkSize)
	}
	if c.Chunker.ChunkOverlap < 0 || c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("chunker.chunk_overlap must be in [0, chunk_size), got %d", c.Chunker.ChunkOverlap)
	}
	switch c.VectorStore.Type {
	case "weaviate", "chromem":
	default:
		return fmt.Errorf("unknown vector_store.type %q", c.VectorStore.Type)
	}
	switch c.OCR.PDFStrategy {
	case "auto", "text", "ocr":
	default:
		return fmt.Errorf("unknown ocr.pdf_strategy %q", c.OCR.PDFStrategy)
	}
	for name, p := range map[string]string{"llm.provider": c.LLM.Provider, "embedding.provider": c.Embedding.Provider} {
		if p != "openai" && p != "gemini" {
			return fmt.Errorf("unknown %s %q", name, p)
		}
	}
	return nil
}
