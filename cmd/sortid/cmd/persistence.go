package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rustyeddy/sortid/clock"
	"github.com/rustyeddy/sortid/config"
	"github.com/rustyeddy/sortid/persist"
)

var uuidVariants = []clock.Variant{clock.V1, clock.V6, clock.V7}

// ulidStore is the attached ULID backend, shared with ULID generators.
var ulidStore persist.Backend[persist.ULIDData]

type backends struct {
	uuid func(v clock.Variant) (persist.Backend[persist.UUIDData], error)
	ulid func() (persist.Backend[persist.ULIDData], error)
}

func newBackends(pc config.PersistenceConfig) (*backends, error) {
	switch pc.Type {
	case "", "none":
		return nil, nil

	case "memory":
		return &backends{
			uuid: func(clock.Variant) (persist.Backend[persist.UUIDData], error) {
				return persist.NewMemory[persist.UUIDData](), nil
			},
			ulid: func() (persist.Backend[persist.ULIDData], error) {
				return persist.NewMemory[persist.ULIDData](), nil
			},
		}, nil

	case "file":
		if err := os.MkdirAll(pc.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
		path := func(v clock.Variant) string {
			return filepath.Join(pc.Dir, v.String()+".state")
		}
		return &backends{
			uuid: func(v clock.Variant) (persist.Backend[persist.UUIDData], error) {
				return persist.NewFile[persist.UUIDData](path(v)), nil
			},
			ulid: func() (persist.Backend[persist.ULIDData], error) {
				return persist.NewFile[persist.ULIDData](path(clock.ULID)), nil
			},
		}, nil

	case "sqlite":
		return &backends{
			uuid: func(v clock.Variant) (persist.Backend[persist.UUIDData], error) {
				return persist.NewSQLite[persist.UUIDData](pc.DBPath, v.String())
			},
			ulid: func() (persist.Backend[persist.ULIDData], error) {
				return persist.NewSQLite[persist.ULIDData](pc.DBPath, clock.ULID.String())
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown persistence type %q", pc.Type)
}

// attachPersistence points the process-wide clock states at the configured
// backends. The returned function detaches them again.
func attachPersistence(pc config.PersistenceConfig) (func() error, error) {
	b, err := newBackends(pc)
	if err != nil || b == nil {
		return nil, err
	}

	detach := func() error {
		var errs []error
		for _, v := range uuidVariants {
			errs = append(errs, clock.SetUUIDPersistence(v, nil))
		}
		errs = append(errs, clock.SetULIDPersistence(nil))
		ulidStore = nil
		return errors.Join(errs...)
	}

	for _, v := range uuidVariants {
		ub, err := b.uuid(v)
		if err != nil {
			return nil, errors.Join(err, detach())
		}
		if err := clock.SetUUIDPersistence(v, ub); err != nil {
			return nil, errors.Join(err, detach())
		}
	}
	lb, err := b.ulid()
	if err != nil {
		return nil, errors.Join(err, detach())
	}
	if err := clock.SetULIDPersistence(lb); err != nil {
		return nil, errors.Join(err, detach())
	}
	ulidStore = lb

	slog.Debug("clock persistence attached", "type", pc.Type)
	return detach, nil
}
