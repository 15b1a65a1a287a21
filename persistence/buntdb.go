package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/codehive/codehive/config"
	"github.com/codehive/codehive/types"
	"github.com/tidwall/buntdb"
)

type BuntDBPersist struct {
	db *buntdb.DB
}

func NewBuntPersister(cfg *config.Config) (Persister, error) {
	db, err := setupBuntDB(cfg)
	if err != nil {
		return nil, err
	}
	return &BuntDBPersist{db}, nil
}

func setupBuntDB(cfg *config.Config) (*buntdb.DB, error) {
	fileName := cfg.PersistenceConfig.DSN
	if fileName == "" {
		return nil, fmt.Errorf("no buntdb file configured")
	}
	db, err := buntdb.Open(fileName)
	if err != nil {
		return nil, err
	}
	err = db.CreateIndex("invite", "room:*", buntdb.IndexJSON("inviteCode"))
	if err != nil && !errors.Is(err, buntdb.ErrIndexExists) {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (p *BuntDBPersist) set(key string, v interface{}) error {
	u, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, string(u), nil)
		return err
	})
}

func (p *BuntDBPersist) get(key string, v interface{}) error {
	err := p.db.View(func(tx *buntdb.Tx) error {
		u, err := tx.Get(key)
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(u), v)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (p *BuntDBPersist) StoreUser(user types.User) error {
	return p.set("user:"+user.Id, user)
}

func (p *BuntDBPersist) GetUser(user *types.User) error {
	if user.Id == "" {
		return fmt.Errorf("no user id")
	}
	return p.get("user:"+user.Id, user)
}

func (p *BuntDBPersist) StoreRoom(room types.Room) error {
	return p.set("room:"+room.Id, room)
}

func (p *BuntDBPersist) GetRoom(room *types.Room) error {
	if room.Id == "" {
		return fmt.Errorf("no room id")
	}
	return p.get("room:"+room.Id, room)
}

func (p *BuntDBPersist) GetRoomByInviteCode(code string) (*types.Room, error) {
	if code == "" {
		return nil, ErrNotFound
	}
	var raw string
	err := p.db.View(func(tx *buntdb.Tx) error {
		pivot := fmt.Sprintf(`{"inviteCode":%q}`, code)
		return tx.AscendEqual("invite", pivot, func(key, value string) bool {
			if strings.HasPrefix(key, "room:") {
				raw = value
				return false
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrNotFound
	}
	room := &types.Room{}
	if err := json.Unmarshal([]byte(raw), room); err != nil {
		return nil, err
	}
	return room, nil
}

func (p *BuntDBPersist) GetRooms() ([]*types.Room, error) {
	rooms := make([]*types.Room, 0)
	err := p.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys("room:*", func(key, value string) bool {
			room := &types.Room{}
			if err := json.Unmarshal([]byte(value), room); err == nil {
				rooms = append(rooms, room)
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (p *BuntDBPersist) DeleteRoom(room *types.Room) error {
	err := p.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete("room:" + room.Id)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil
	}
	return err
}

func (p *BuntDBPersist) StoreProject(project types.Project) error {
	return p.set("project:"+project.Id, project)
}

func (p *BuntDBPersist) GetProject(project *types.Project) error {
	if project.Id == "" {
		return fmt.Errorf("no project id")
	}
	return p.get("project:"+project.Id, project)
}

func (p *BuntDBPersist) GetProjectsByOwner(ownerUserId string) ([]*types.Project, error) {
	projects := make([]*types.Project, 0)
	err := p.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys("project:*", func(key, value string) bool {
			project := &types.Project{}
			if err := json.Unmarshal([]byte(value), project); err == nil && project.OwnerUserId == ownerUserId {
				projects = append(projects, project)
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (p *BuntDBPersist) Close() error {
	return p.db.Close()
}
