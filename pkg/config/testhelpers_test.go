package config

import (
	"os"
	"testing"
)

// providerEnvVars are cleared before each Load test so results do not
// depend on the developer's shell environment.
var providerEnvVars = []string{
	"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GOOGLE_API_KEY",
	"GOOGLE_APPLICATION_CREDENTIALS", "GROQ_API_KEY",
	"OLLAMA_MODEL", "OLLAMA_BASE_URL", "USE_FAKE_MODEL",
	"DEFAULT_MODEL", "GITHUB_PAT", "MCP_GITHUB_SERVER_URL",
	"AUTH_SECRET", "AUTH_MODE", "AUTH_JWKS_URL",
	"DATABASE_TYPE", "SQLITE_DB_PATH", "LLAMA_GUARD_ENABLED",
	"HOST", "PORT",
}

func TestMain(m *testing.M) {
	for _, name := range providerEnvVars {
		os.Unsetenv(name)
	}
	os.Exit(m.Run())
}

func writeFile(path, data string) error {
	return os.WriteFile(path, []byte(data), 0o644)
}
