package vector

import (
	"fmt"

	"github.com/kadirpekel/dealfinder/pkg/config"
)

// NewProvider creates a vector provider from configuration.
func NewProvider(cfg config.VectorConfig) (Provider, error) {
	switch cfg.Type {
	case config.VectorTypeChromem, "":
		return NewChromemProvider(ChromemConfig{
			PersistPath: cfg.PersistPath,
			Compress:    cfg.Compress,
		})
	case config.VectorTypeQdrant:
		return NewQdrantProvider(QdrantConfig{
			Host:   cfg.Host,
			Port:   cfg.Port,
			APIKey: cfg.APIKey,
			UseTLS: cfg.UseTLS,
		})
	default:
		return nil, fmt.Errorf("unknown vector provider type: %q", cfg.Type)
	}
}
