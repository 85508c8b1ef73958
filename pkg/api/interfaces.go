// Interfaces the server and CLI depend on, for dependency injection.

package api

import (
	"context"

	"github.com/ssargent/dbkey/pkg/keycodec"
	"github.com/ssargent/dbkey/pkg/storage"
)

// Storage engines understood by the default store factory
const (
	EnginePebble = "pebble"
	EngineLog    = "log"
	EngineMemory = "memory"
)

// StoreConfig selects and configures the store behind the API and CLI
type StoreConfig struct {
	DataDir    string
	Descriptor *keycodec.Descriptor
	// Engine is one of EnginePebble, EngineLog or EngineMemory. Empty
	// selects EnginePebble. DataDir is ignored for EngineMemory.
	Engine string
	// Sync makes disk writes durable before they return.
	Sync bool
}

// StoreFactory opens stores
type StoreFactory interface {
	// OpenStore opens the store described by config
	OpenStore(config StoreConfig) (storage.Store, error)
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves store until ctx is cancelled
	StartServer(ctx context.Context, store storage.Store, config ServerConfig) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
