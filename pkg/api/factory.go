// Factories that build stores and servers from configuration.

package api

import (
	"context"
	"fmt"

	"github.com/ssargent/dbkey/pkg/bptree"
	"github.com/ssargent/dbkey/pkg/storage"
)

// DefaultStoreFactory is the default implementation of StoreFactory
type DefaultStoreFactory struct{}

// NewStoreFactory creates a new store factory
func NewStoreFactory() StoreFactory {
	return &DefaultStoreFactory{}
}

// OpenStore opens the store for config.Engine
func (f *DefaultStoreFactory) OpenStore(config StoreConfig) (storage.Store, error) {
	switch config.Engine {
	case "", EnginePebble:
		return storage.OpenDisk(config.DataDir, config.Descriptor, storage.DiskOptions{Sync: config.Sync})
	case EngineLog:
		return storage.OpenLog(config.DataDir, config.Descriptor, storage.LogOptions{
			Sync:  config.Sync,
			Order: bptree.DefaultOrder * 8,
		})
	case EngineMemory:
		return storage.NewMemStore(config.Descriptor, bptree.DefaultOrder*8), nil
	default:
		return nil, fmt.Errorf("unknown storage engine %q", config.Engine)
	}
}

// DefaultServerFactory is the default implementation of ServerFactory
type DefaultServerFactory struct{}

// NewServerFactory creates a new server factory
func NewServerFactory() ServerFactory {
	return &DefaultServerFactory{}
}

// CreateServerStarter creates a server starter
func (f *DefaultServerFactory) CreateServerStarter() ServerStarter {
	return &DefaultServerStarter{}
}

// DefaultServerStarter is the default implementation of ServerStarter
type DefaultServerStarter struct{}

// StartServer starts the API server with the given configuration
func (s *DefaultServerStarter) StartServer(ctx context.Context, store storage.Store, config ServerConfig) error {
	return StartServer(ctx, store, config)
}
