package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/rs/zerolog/log"
)

// AnalysisCache stores normalized analyses keyed by image hash. A miss is
// nil, nil.
type AnalysisCache interface {
	GetVisionCache(imageHash string) (*Analysis, error)
	SetVisionCache(imageHash string, analysis *Analysis) error
}

// CachedAnalyzer wraps an Analyzer with a persistent cache. Cache failures
// are logged and ignored; the wrapped analyzer is the source of truth.
type CachedAnalyzer struct {
	inner Analyzer
	cache AnalysisCache
}

func NewCachedAnalyzer(inner Analyzer, cache AnalysisCache) *CachedAnalyzer {
	return &CachedAnalyzer{inner: inner, cache: cache}
}

// hashImage hashes the base64 payload with any data-URI prefix stripped, so
// the bare and data-URI forms of the same image share a cache entry.
func hashImage(imageData string) string {
	content := dataUriPrefix.ReplaceAllString(imageData, "")
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Annotate implements the Analyzer interface with caching.
func (c *CachedAnalyzer) Annotate(ctx context.Context, imageData string) (*Analysis, error) {
	hash := hashImage(imageData)

	if c.cache != nil {
		cached, err := c.cache.GetVisionCache(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check vision cache")
		} else if cached != nil {
			log.Debug().Str("hash", hash[:16]).Msg("vision cache hit")
			return cached, nil
		}
	}

	analysis, err := c.inner.Annotate(ctx, imageData)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.SetVisionCache(hash, analysis); err != nil {
			log.Warn().Err(err).Msg("failed to cache vision result")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached vision result")
		}
	}

	return analysis, nil
}
