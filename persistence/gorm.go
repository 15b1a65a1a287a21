package persistence

import (
	"errors"
	"fmt"

	"github.com/codehive/codehive/config"
	"github.com/codehive/codehive/types"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormPersist struct {
	db *gorm.DB
}

func NewGormPersister(cfg *config.Config) (Persister, error) {
	db, err := setupGormDB(cfg)
	if err != nil {
		return nil, err
	}
	p := GormPersist{db: db}
	return &p, nil
}

func setupGormDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.PersistenceConfig.DSN == "" {
		return nil, fmt.Errorf("no DSN configured")
	}
	var dial gorm.Dialector
	switch cfg.PersistenceConfig.Type {
	case "postgres":
		dial = postgres.Open(cfg.PersistenceConfig.DSN)

	case "sqlite":
		dial = sqlite.Open(cfg.PersistenceConfig.DSN)

	default:
		return nil, fmt.Errorf("invalid gorm configuration")
	}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	err = db.Migrator().AutoMigrate(&types.User{}, &types.Room{}, &types.Project{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (p *GormPersist) StoreUser(user types.User) error {
	return p.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&user).Error
}

func (p *GormPersist) GetUser(user *types.User) error {
	return notFound(p.db.First(user).Error)
}

func (p *GormPersist) StoreRoom(room types.Room) error {
	return p.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&room).Error
}

func (p *GormPersist) GetRoom(room *types.Room) error {
	return notFound(p.db.First(room).Error)
}

func (p *GormPersist) GetRoomByInviteCode(code string) (*types.Room, error) {
	room := &types.Room{}
	err := p.db.Where("invite_code = ?", code).First(room).Error
	if err != nil {
		return nil, notFound(err)
	}
	return room, nil
}

func (p *GormPersist) GetRooms() ([]*types.Room, error) {
	rooms := make([]*types.Room, 0)
	err := p.db.Find(&rooms).Error
	return rooms, err
}

func (p *GormPersist) DeleteRoom(room *types.Room) error {
	return p.db.Delete(room).Error
}

func (p *GormPersist) StoreProject(project types.Project) error {
	return p.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&project).Error
}

func (p *GormPersist) GetProject(project *types.Project) error {
	return notFound(p.db.First(project).Error)
}

func (p *GormPersist) GetProjectsByOwner(ownerUserId string) ([]*types.Project, error) {
	projects := make([]*types.Project, 0)
	err := p.db.Where("owner_user_id = ?", ownerUserId).Order("updated_at DESC").Find(&projects).Error
	return projects, err
}

func (p *GormPersist) Close() error {
	return nil
}
