package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Vector    VectorConfig
	LLM       LLMConfig
	Auth      AuthConfig
	Chat      ChatConfig
	Knowledge KnowledgeConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type MongoConfig struct {
	URI      string
	Database string
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLHours int
}

type VectorConfig struct {
	Endpoint       string
	CollectionName string
	Namespace      string
	Dimension      int
	TopK           int
}

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
	TimeoutSec     int
}

type AuthConfig struct {
	JWTSecret      string
	TokenExpirySec int
	BcryptCost     int
}

type ChatConfig struct {
	Persona          string
	MaxAnswerWords   int
	MaxHistoryTurns  int
	MaxHistoryTokens int
	IncludeRoles     bool
	FallbackAnswer   string
}

type KnowledgeConfig struct {
	CatalogPath string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/support-agent")

	viper.SetEnvPrefix("SUPPORT_AGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwtSecret must be set")
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "support_agent")

	viper.SetDefault("sqlite.path", "./data/exchanges.db")

	viper.SetDefault("redis.enabled", true)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlHours", 24)

	viper.SetDefault("vector.endpoint", "localhost:19530")
	viper.SetDefault("vector.collectionName", "knowledge_base")
	viper.SetDefault("vector.namespace", "files")
	viper.SetDefault("vector.dimension", 3072)
	viper.SetDefault("vector.topK", 3)

	// Empty defaults so the env replacer can bind secrets during unmarshal.
	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.model", "gpt-4")
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-large")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.maxTokens", 512)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("auth.jwtSecret", "")
	viper.SetDefault("auth.tokenExpirySec", 3600)
	viper.SetDefault("auth.bcryptCost", 10)

	viper.SetDefault("chat.persona",
		"You are a customer support representative at a mobile network provider. "+
			"Assist customers with their inquiries in a friendly, professional and empathetic tone. "+
			"Answer strictly from the provided context with no additional details.")
	viper.SetDefault("chat.maxAnswerWords", 30)
	viper.SetDefault("chat.maxHistoryTurns", 10)
	viper.SetDefault("chat.maxHistoryTokens", 512)
	viper.SetDefault("chat.includeRoles", false)
	viper.SetDefault("chat.fallbackAnswer",
		"I'm sorry, I couldn't find anything in our knowledge base that answers your question. "+
			"Could you rephrase it, or contact our support line for further help?")

	viper.SetDefault("knowledge.catalogPath", "./config/catalog.json")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
