package config

import (
	"os"
	"path/filepath"
)

// DefaultSystemInstruction is the persona sent with every completion
// request. Overridable via SYSTEM_INSTRUCTION for people who want a plainer
// assistant.
const DefaultSystemInstruction = `You are Aila, an AI liaison: a hyper-efficient, humanlike desktop assistant.

Be confident, direct and semi-formal, with occasional dry wit. Respect the
user's time: acknowledge feelings briefly, then pivot to solutions and
results. Motivate with logic and observed patterns from the conversation,
not platitudes, and constructively challenge inefficient approaches.

Use Markdown formatting (lists, bold, italics, code blocks) where it helps
readability.`

type Config struct {
	ListenAddr string
	DataDir    string
	DBPath     string
	LogDir     string

	// AI provider
	AIProvider        string
	SystemInstruction string
	GeminiBaseURL     string
	GeminiAPIKey      string
	GeminiModel       string
	OllamaBaseURL     string
	OllamaModel       string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterSiteURL string
	OpenRouterAppName string
}

func Load() Config {
	// Only the loopback interface: the API is an in-process boundary for the
	// UI shell, not a network service.
	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = "127.0.0.1:8972"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		if base, err := os.UserConfigDir(); err == nil {
			dataDir = filepath.Join(base, "deskchat")
		} else {
			dataDir = "."
		}
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "chatbot-data.sqlite")
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = filepath.Join(dataDir, "logs")
	}

	aiProvider := os.Getenv("AI_PROVIDER")
	if aiProvider == "" {
		aiProvider = "gemini"
	}

	systemInstruction := os.Getenv("SYSTEM_INSTRUCTION")
	if systemInstruction == "" {
		systemInstruction = DefaultSystemInstruction
	}

	geminiBaseURL := os.Getenv("GEMINI_BASE_URL")
	if geminiBaseURL == "" {
		geminiBaseURL = "https://generativelanguage.googleapis.com"
	}
	geminiModel := os.Getenv("GEMINI_MODEL")
	if geminiModel == "" {
		geminiModel = "gemini-2.0-flash"
	}

	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}
	ollamaModel := os.Getenv("OLLAMA_MODEL")
	if ollamaModel == "" {
		ollamaModel = "llama3:latest"
	}

	openRouterBaseURL := os.Getenv("OPENROUTER_BASE_URL")
	if openRouterBaseURL == "" {
		openRouterBaseURL = "https://openrouter.ai/api/v1"
	}
	openRouterModel := os.Getenv("OPENROUTER_MODEL")
	if openRouterModel == "" {
		openRouterModel = "openrouter/auto"
	}

	return Config{
		ListenAddr: listenAddr,
		DataDir:    dataDir,
		DBPath:     dbPath,
		LogDir:     logDir,

		AIProvider:        aiProvider,
		SystemInstruction: systemInstruction,
		GeminiBaseURL:     geminiBaseURL,
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       geminiModel,
		OllamaBaseURL:     ollamaBaseURL,
		OllamaModel:       ollamaModel,
		OpenRouterBaseURL: openRouterBaseURL,
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:   openRouterModel,
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),
	}
}
