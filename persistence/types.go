package persistence

import (
	"errors"

	"github.com/codehive/codehive/config"
	"github.com/codehive/codehive/types"
)

// ErrNotFound is returned by all Get* methods when the record does not
// exist, regardless of backend.
var ErrNotFound = errors.New("record not found")

// Persister is the storage behind rooms, projects and users. All room and
// project mutations in the system follow read-modify-persist on top of this
// interface; there are no transactions spanning calls.
type Persister interface {
	StoreUser(types.User) error
	GetUser(*types.User) error

	StoreRoom(types.Room) error
	GetRoom(*types.Room) error
	GetRoomByInviteCode(code string) (*types.Room, error)
	GetRooms() ([]*types.Room, error)
	DeleteRoom(*types.Room) error

	StoreProject(types.Project) error
	GetProject(*types.Project) error
	GetProjectsByOwner(ownerUserId string) ([]*types.Project, error)

	Close() error
}

// NewPersister creates the persister selected by the configuration, one of
// the gorm backends (sqlite, postgres) or buntdb.
func NewPersister(cfg *config.Config) (Persister, error) {
	switch cfg.PersistenceConfig.Type {
	case "sqlite", "postgres":
		return NewGormPersister(cfg)
	case "buntdb":
		return NewBuntPersister(cfg)
	case "":
		return nil, errors.New("no persistence configured")
	default:
		return nil, errors.New("unknown persistence type: " + cfg.PersistenceConfig.Type)
	}
}
