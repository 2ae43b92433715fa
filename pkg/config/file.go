package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML configuration file. It covers settings
// that have no natural environment-variable shape, mainly the retrieval
// pipeline behind the knowledge-base agent. ${VAR} references inside the
// file are expanded from the environment before parsing.
type FileConfig struct {
	RAG RAGConfig `yaml:"rag"`
}

// RAGConfig configures document ingestion and retrieval.
type RAGConfig struct {
	Enabled bool `yaml:"enabled"`

	// DocsFolder is the directory to ingest documents from.
	DocsFolder string `yaml:"docs_folder"`

	// Watch re-ingests files when they change on disk.
	Watch bool `yaml:"watch"`

	// Store selects the vector backend: chromem (default), qdrant, pinecone.
	Store string `yaml:"store"`

	// PersistPath is the chromem persistence directory (empty = memory only).
	PersistPath string `yaml:"persist_path"`

	// Collection names the vector collection.
	Collection string `yaml:"collection"`

	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	// TopK is the number of documents retrieved per query.
	TopK int `yaml:"top_k"`

	Embedder EmbedderConfig `yaml:"embedder"`
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Pinecone PineconeConfig `yaml:"pinecone"`
}

// EmbedderConfig selects the embedding provider.
type EmbedderConfig struct {
	// Provider is openai or ollama. Empty follows the configured LLM
	// providers (openai wins if available).
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	BaseURL   string `yaml:"base_url"`
}

// QdrantConfig locates a Qdrant server.
type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

// PineconeConfig locates a Pinecone index.
type PineconeConfig struct {
	APIKey    string `yaml:"api_key"`
	IndexHost string `yaml:"index_host"`
	Namespace string `yaml:"namespace"`
}

// LoadFile reads and parses a YAML config file with env expansion.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies default values.
func (c *FileConfig) SetDefaults() {
	c.RAG.SetDefaults()
}

// Validate checks the file configuration.
func (c *FileConfig) Validate() error {
	if err := c.RAG.Validate(); err != nil {
		return fmt.Errorf("rag: %w", err)
	}
	return nil
}

// SetDefaults applies default values.
func (c *RAGConfig) SetDefaults() {
	if c.Store == "" {
		c.Store = "chromem"
	}
	if c.Collection == "" {
		c.Collection = "knowledge-base"
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 512
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 64
	}
	if c.TopK == 0 {
		c.TopK = 4
	}
	if c.Qdrant.Port == 0 {
		c.Qdrant.Port = 6334
	}
}

// Validate checks the RAG configuration.
func (c *RAGConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.DocsFolder == "" {
		return fmt.Errorf("docs_folder is required when rag is enabled")
	}
	switch c.Store {
	case "chromem":
	case "qdrant":
		if c.Qdrant.Host == "" {
			return fmt.Errorf("qdrant.host is required for the qdrant store")
		}
	case "pinecone":
		if c.Pinecone.APIKey == "" || c.Pinecone.IndexHost == "" {
			return fmt.Errorf("pinecone.api_key and pinecone.index_host are required for the pinecone store")
		}
	default:
		return fmt.Errorf("unsupported store %q (valid: chromem, qdrant, pinecone)", c.Store)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be smaller than chunk_size")
	}
	return nil
}
