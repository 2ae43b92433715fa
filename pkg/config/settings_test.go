package config

import (
	"path/filepath"
	"testing"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFailsWithoutAnyProvider(t *testing.T) {
	// Touch no provider variables at all.
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model provider configured")
}

func TestLoadDefaultsFromFirstProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, schema.ModelGPT4oMini, s.DefaultModel)
	assert.Equal(t, "0.0.0.0:8080", s.Address())
	assert.True(t, s.ProviderEnabled(schema.ProviderOpenAI))
	assert.False(t, s.ProviderEnabled(schema.ProviderAnthropic))
}

func TestProviderPrecedence(t *testing.T) {
	// openai outranks groq in the fixed provider order.
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, schema.ModelGPT4oMini, s.DefaultModel)
}

func TestExplicitDefaultModelWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("DEFAULT_MODEL", schema.ModelClaudeHaiku)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, schema.ModelClaudeHaiku, s.DefaultModel)
}

func TestDefaultModelRequiresConfiguredProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEFAULT_MODEL", schema.ModelClaudeHaiku)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestOllamaDefaults(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "llama3.2")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama3.2", s.DefaultModel)
	assert.Equal(t, "http://localhost:11434", s.OllamaBaseURL)
	assert.Contains(t, s.AvailableModels(), "llama3.2")
}

func TestVertexCredentialsEnableGoogle(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/secrets/sa-key.json")

	s, err := Load()
	require.NoError(t, err)

	assert.True(t, s.ProviderEnabled(schema.ProviderGoogle))
	assert.Equal(t, schema.ModelGeminiFlash, s.DefaultModel)
}

func TestGitHubIntegrationDefaults(t *testing.T) {
	t.Setenv("USE_FAKE_MODEL", "true")

	s, err := Load()
	require.NoError(t, err)

	// Absence of GITHUB_PAT disables tools but never errors.
	assert.Empty(t, s.GitHubPAT)
	assert.Equal(t, defaultMCPGitHubServerURL, s.MCPGitHubServerURL)

	t.Setenv("MCP_GITHUB_SERVER_URL", "https://mcp.internal/github")
	s, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "https://mcp.internal/github", s.MCPGitHubServerURL)
}

func TestLlamaGuardRequiresGroq(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLAMA_GUARD_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
}

func TestAuthConfigFromEnv(t *testing.T) {
	t.Setenv("USE_FAKE_MODEL", "true")
	t.Setenv("AUTH_SECRET", "hush")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AuthModeSecret, s.Auth.Mode)
	assert.True(t, s.Auth.Enabled())
}

func TestAuthJWTModeRequiresJWKS(t *testing.T) {
	cfg := AuthConfig{Mode: AuthModeJWT}
	cfg.SetDefaults()
	require.Error(t, cfg.Validate())

	cfg.JWKSURL = "https://issuer.example/jwks.json"
	require.NoError(t, cfg.Validate())
}

func TestDatabaseConfigValidation(t *testing.T) {
	cfg := DatabaseConfig{Type: DatabasePostgres, User: "app", Host: "db"}
	cfg.SetDefaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_PASSWORD")
	assert.Contains(t, err.Error(), "POSTGRES_DB")

	cfg.Password = "pw"
	cfg.Name = "agents"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "postgres://app:pw@db:5432/agents?sslmode=disable", cfg.DSN())
}

func TestDatabaseConfigSQLiteDefaults(t *testing.T) {
	var cfg DatabaseConfig
	cfg.SetDefaults()

	assert.Equal(t, DatabaseSQLite, cfg.Type)
	assert.Equal(t, "sqlite3", cfg.Driver())
	assert.Equal(t, "checkpoints.db", cfg.DSN())
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("RAG_API_KEY", "qk-123")

	assert.Equal(t, "qk-123", ExpandEnv("${RAG_API_KEY}"))
	assert.Equal(t, "", ExpandEnv("${RAG_MISSING}"))
	assert.Equal(t, "fallback", ExpandEnv("${RAG_MISSING:-fallback}"))
	assert.Equal(t, "plain", ExpandEnv("plain"))
}

func TestLoadFile(t *testing.T) {
	t.Setenv("QDRANT_KEY", "qk-test")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
rag:
  enabled: true
  docs_folder: ./docs
  store: qdrant
  qdrant:
    host: localhost
    api_key: ${QDRANT_KEY}
`
	require.NoError(t, writeFile(path, data))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "qdrant", cfg.RAG.Store)
	assert.Equal(t, "qk-test", cfg.RAG.Qdrant.APIKey)
	assert.Equal(t, 6334, cfg.RAG.Qdrant.Port)
	assert.Equal(t, 512, cfg.RAG.ChunkSize)
}

func TestRAGConfigValidation(t *testing.T) {
	cfg := RAGConfig{Enabled: true}
	cfg.SetDefaults()
	require.Error(t, cfg.Validate())

	cfg.DocsFolder = "./docs"
	require.NoError(t, cfg.Validate())

	cfg.Store = "pinecone"
	require.Error(t, cfg.Validate())

	cfg.Pinecone.APIKey = "pk"
	cfg.Pinecone.IndexHost = "idx.example"
	require.NoError(t, cfg.Validate())
}
