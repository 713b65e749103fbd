package memory

import (
	"github.com/blogdeck/blogdeck/cli/pkg/storage"
)

func init() {
	storage.RegisterBackend(storage.BackendMemory, func(cfg storage.Config) (storage.Store, error) {
		return New(), nil
	})
}
