package parser

import (
	"fmt"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/port"
)

// Deps carries collaborators a provider may need beyond its own config.
type Deps struct {
	OCR port.OCREngine
}

// ProviderFactory is a function that creates a CardParser from a provider config.
type ProviderFactory func(cfg *config.CardParserProviderConfig, deps Deps) (port.CardParser, error)

// registry of parser provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

func init() {
	RegisterProvider(ProviderOCR, func(_ *config.CardParserProviderConfig, deps Deps) (port.CardParser, error) {
		return NewOCRParser(deps.OCR), nil
	})
}

// RegisterProvider registers a parser provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewParser creates a CardParser from a provider config using the registered factory.
func NewParser(cfg *config.CardParserProviderConfig, deps Deps) (port.CardParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg, deps)
}

// Build creates the configured providers and combines them according to the
// parse mode.
func Build(cfg *config.CardParserConfig, deps Deps) (port.CardParser, error) {
	primaryCfg := cfg.PrimaryConfig()
	primary, err := NewParser(primaryCfg, deps)
	if err != nil {
		return nil, fmt.Errorf("primary parser: %w", err)
	}

	mode := domain.ParseMode(cfg.Mode)
	if mode == "" {
		mode = domain.ParseModeSingle
	}

	switch mode {
	case domain.ParseModeSingle:
		return primary, nil

	case domain.ParseModeFallback:
		parsers := []port.CardParser{primary}
		names := []string{primaryCfg.Provider}
		for _, extra := range []*config.CardParserProviderConfig{cfg.SecondaryConfig(), cfg.TertiaryConfig()} {
			if extra == nil {
				continue
			}
			p, err := NewParser(extra, deps)
			if err != nil {
				return nil, fmt.Errorf("fallback parser %s: %w", extra.Provider, err)
			}
			parsers = append(parsers, p)
			names = append(names, extra.Provider)
		}
		if len(parsers) == 1 {
			return primary, nil
		}
		return NewFallbackParser(parsers, names), nil

	case domain.ParseModeMerge:
		secondaryCfg := cfg.SecondaryConfig()
		if secondaryCfg == nil {
			return nil, fmt.Errorf("merge mode requires a secondary parser")
		}
		secondary, err := NewParser(secondaryCfg, deps)
		if err != nil {
			return nil, fmt.Errorf("secondary parser: %w", err)
		}
		return NewMergeParser(primary, secondary), nil

	default:
		return nil, fmt.Errorf("unknown parse mode: %s", cfg.Mode)
	}
}
