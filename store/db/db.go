package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/calagent/internal/profile"
	"github.com/hrygo/calagent/store"
	"github.com/hrygo/calagent/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile. Chat history is
// local single-user data, so SQLite is the only supported backend.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'sqlite' is supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
