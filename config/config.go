package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is parsed once at process start and handed to constructors
// explicitly; nothing reaches it through package globals.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	PostgresURI string `env:"POSTGRES_URI,required"`
	RedisAddr   string `env:"REDIS_ADDR"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	// openai | vertex
	LLMProvider   string        `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMTimeout    time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	VertexProject  string `env:"VERTEX_PROJECT"`
	VertexLocation string `env:"VERTEX_LOCATION" envDefault:"us-central1"`
	VertexModel    string `env:"VERTEX_MODEL" envDefault:"gemini-1.5-flash"`

	// When GCS_BUCKET is empty, uploads go to UPLOAD_DIR on local disk.
	GCSBucket string `env:"GCS_BUCKET"`
	UploadDir string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	ExportDir string `env:"EXPORT_DIR" envDefault:"./exports"`

	ParseWorkers int `env:"PARSE_WORKERS" envDefault:"3"`
}

func Load() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
