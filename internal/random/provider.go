package random

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mealmax/internal/config"
)

// NewFromConfig builds the configured provider wrapped in a LoggedSource.
//
// Precondition: cfg has passed config validation; logger must be non-nil.
func NewFromConfig(cfg config.RandomConfig, logger *zap.Logger) (Source, error) {
	var src Source
	switch cfg.Provider {
	case config.ProviderRandomOrg:
		src = NewRandomOrg(cfg.URL, cfg.Timeout, &http.Client{})
	case config.ProviderCrypto:
		src = NewCryptoSource()
	default:
		return nil, fmt.Errorf("unknown random provider %q", cfg.Provider)
	}
	return NewLoggedSource(cfg.Provider, src, logger), nil
}
