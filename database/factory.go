package database

import (
	"fmt"

	"github.com/tieubaoca/manualbot/config"
)

// NewVectorStore builds the backend named by cfg.Type.
func NewVectorStore(cfg config.VectorStoreConfig) (VectorStore, error) {
	switch cfg.Type {
	case "weaviate":
		return NewWeaviateStore(cfg)
	case "chromem":
		return NewChromemStore(cfg.Path, cfg.Compress)
	default:
		return nil, fmt.Errorf("unknown vector store type %q", cfg.Type)
	}
}
