package file

import (
	"github.com/blogdeck/blogdeck/cli/pkg/storage"
)

func init() {
	storage.RegisterBackend(storage.BackendFile, func(cfg storage.Config) (storage.Store, error) {
		return New(cfg.Dir)
	})
}
