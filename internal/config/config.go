package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	SkillsFile   string
	OutputDir    string
	UploadsDir   string
	CSVFilename  string
	JSONFilename string

	// Entity recognition
	NERBackend     string   // "prose" or "llm"
	FalsePositives []string // PERSON entities that are never accepted as a name

	// LLM Configuration (NER_BACKEND=llm)
	LLMProvider string // "openai", "groq", "ollama"
	LLMModel    string
	LLMAPIKey   string
	LLMBaseURL  string

	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	Port      string
	LogLevel  string
	LogFormat string
}

var DefaultFalsePositives = []string{"Problem Solving", "Stellarium"}

// LoadConfig reads .env (if present) and the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	llmProvider := getenv("LLM_PROVIDER", "openai")

	llmAPIKey := os.Getenv("LLM_API_KEY")
	if llmAPIKey == "" {
		switch llmProvider {
		case "openai":
			llmAPIKey = os.Getenv("OPENAI_API_KEY")
		case "groq":
			llmAPIKey = os.Getenv("GROQ_API_KEY")
		}
	}

	falsePositives := DefaultFalsePositives
	if v := os.Getenv("NAME_FALSE_POSITIVES"); v != "" {
		falsePositives = splitList(v)
	}

	ttl := 24 * time.Hour
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Warn().Str("CACHE_TTL", v).Msg("invalid duration, using 24h")
		} else {
			ttl = d
		}
	}

	return &Config{
		SkillsFile:     getenv("SKILLS_FILE", "skills.txt"),
		OutputDir:      getenv("OUTPUT_DIR", "."),
		UploadsDir:     getenv("UPLOADS_DIR", "./uploads"),
		CSVFilename:    getenv("CSV_FILENAME", "parsed_resume.csv"),
		JSONFilename:   getenv("JSON_FILENAME", "parsed_resume.json"),
		NERBackend:     getenv("NER_BACKEND", "prose"),
		FalsePositives: falsePositives,
		LLMProvider:    llmProvider,
		LLMModel:       getenv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:      llmAPIKey,
		LLMBaseURL:     os.Getenv("LLM_BASE_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		CacheTTL:       ttl,
		Port:           getenv("PORT", "8080"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "pretty"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList splits a comma-separated value, trimming blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
