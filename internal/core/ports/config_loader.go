package ports

import "go.trai.ch/plait/internal/core/domain"

// ConfigLoader defines the interface for loading the project settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the settings for the project rooted at root.
	// An empty path means the default plait.yaml under root; a missing
	// default file yields domain.DefaultSettings.
	Load(root, path string) (*domain.Settings, error)
}
