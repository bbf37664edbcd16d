// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/plait/internal/adapters/archive"
	_ "go.trai.ch/plait/internal/adapters/config"
	_ "go.trai.ch/plait/internal/adapters/fs"
	_ "go.trai.ch/plait/internal/adapters/linear"
	_ "go.trai.ch/plait/internal/adapters/logger"
	_ "go.trai.ch/plait/internal/adapters/plugins"
	_ "go.trai.ch/plait/internal/adapters/publish"
	_ "go.trai.ch/plait/internal/adapters/server"
	_ "go.trai.ch/plait/internal/adapters/shell"
	_ "go.trai.ch/plait/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/plait/internal/app"
)
