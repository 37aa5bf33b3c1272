package postprocessors

import (
	"github.com/custodia-labs/chunkflow/internal/core/ports/driven"
	"github.com/custodia-labs/chunkflow/internal/postprocessors/enricher"
)

// DefaultProcessor is the processor the pipeline builds when none is configured.
const DefaultProcessor = "enricher"

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("enricher", buildEnricher)
}

// buildEnricher creates an enricher from generic config.
// Supported config keys:
//   - region (string): storage region used when a request carries none
//   - bucket (string): storage bucket used when a request carries none
func buildEnricher(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []enricher.Option

	region := getStringFromConfig(cfg, "region")
	bucket := getStringFromConfig(cfg, "bucket")
	if region != "" || bucket != "" {
		opts = append(opts, enricher.WithDefaultLocation(region, bucket))
	}

	return enricher.New(opts...), nil
}

// getStringFromConfig safely extracts a string from generic config map.
func getStringFromConfig(cfg map[string]any, key string) string {
	val, ok := cfg[key]
	if !ok {
		return ""
	}
	s, _ := val.(string)
	return s
}
