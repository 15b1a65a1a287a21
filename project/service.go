// Package project applies structural file operations to a project's flat
// file list and pushes the authoritative result to the room. Folders exist
// only as path prefixes; rename and delete match `path == X` or
// `path starts with X + "/"`, nothing else.
package project

import (
	"context"
	"errors"
	"time"

	"github.com/codehive/codehive/globals"
	"github.com/codehive/codehive/notify"
	"github.com/codehive/codehive/persistence"
	"github.com/codehive/codehive/types"
	"github.com/google/uuid"
)

type Service struct {
	persister persistence.Persister
	notifier  notify.Notifier
}

func NewService(persister persistence.Persister, notifier notify.Notifier) *Service {
	return &Service{persister: persister, notifier: notifier}
}

// Create makes an empty project. When roomId is given the project is
// immediately activated in that room.
func (s *Service) Create(ctx context.Context, ownerUserId, name, roomId string) (*types.Project, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	now := time.Now()
	p := types.Project{
		Id:          uuid.NewString(),
		Name:        name,
		OwnerUserId: ownerUserId,
		Files:       types.FileList{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.persister.StoreProject(p); err != nil {
		return nil, err
	}
	if roomId != "" {
		if err := s.OpenInRoom(ctx, p.Id, roomId, ownerUserId); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// Get loads a project by id.
func (s *Service) Get(projectId string) (*types.Project, error) {
	p := &types.Project{Id: projectId}
	if err := s.persister.GetProject(p); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByOwner returns the caller's projects, most recently updated first.
func (s *Service) ListByOwner(ownerUserId string) ([]*types.Project, error) {
	return s.persister.GetProjectsByOwner(ownerUserId)
}

// OpenInRoom activates a project in a room: the room switches to the editor
// view and every connected client learns the project id, then the full file
// list.
func (s *Service) OpenInRoom(ctx context.Context, projectId, roomId, userId string) error {
	p, err := s.Get(projectId)
	if err != nil {
		return err
	}
	r, err := s.getRoom(roomId)
	if err != nil {
		return err
	}

	r.ActiveProjectId = p.Id
	r.SessionStarted = true
	r.CurrentView = types.ViewEditor
	r.UpdatedAt = time.Now()
	if err := s.persister.StoreRoom(*r); err != nil {
		return err
	}

	s.publish(ctx, notify.Event{Kind: notify.KindProjectActivated, RoomId: r.Id, ProjectId: p.Id})
	s.publish(ctx, notify.Event{Kind: notify.KindFilesUpdated, RoomId: r.Id, ProjectId: p.Id, Files: p.Files})
	return nil
}

// CreateFile appends a new entry. Creating a path that already exists is a
// conflict; the file list is unchanged in that case.
func (s *Service) CreateFile(ctx context.Context, projectId, roomId, userId, path, content string) ([]types.FileEntry, error) {
	path = types.NormalizePath(path)
	if path == "" {
		return nil, ErrPathRequired
	}
	return s.mutate(ctx, projectId, roomId, func(p *types.Project) error {
		if p.HasFile(path) {
			return ErrPathExists
		}
		p.Files = append(p.Files, types.FileEntry{
			Path:         path,
			Content:      content,
			LastEditedBy: userId,
			UpdatedAt:    time.Now(),
		})
		return nil
	})
}

// RenameFile rewrites the oldPath prefix to newPath on every entry that is
// oldPath itself or lies under it. This is how folder rename works on a flat
// path list.
func (s *Service) RenameFile(ctx context.Context, projectId, roomId, userId, oldPath, newPath string) ([]types.FileEntry, error) {
	oldPath = types.NormalizePath(oldPath)
	newPath = types.NormalizePath(newPath)
	if oldPath == "" || newPath == "" {
		return nil, ErrPathRequired
	}
	return s.mutate(ctx, projectId, roomId, func(p *types.Project) error {
		now := time.Now()
		for i := range p.Files {
			if types.MatchesPrefix(p.Files[i].Path, oldPath) {
				p.Files[i].Path = newPath + p.Files[i].Path[len(oldPath):]
				p.Files[i].LastEditedBy = userId
				p.Files[i].UpdatedAt = now
			}
		}
		return nil
	})
}

// DeleteFile removes the entry at path and everything under it.
func (s *Service) DeleteFile(ctx context.Context, projectId, roomId, userId, path string) ([]types.FileEntry, error) {
	path = types.NormalizePath(path)
	if path == "" {
		return nil, ErrPathRequired
	}
	return s.mutate(ctx, projectId, roomId, func(p *types.Project) error {
		kept := p.Files[:0]
		for _, f := range p.Files {
			if !types.MatchesPrefix(f.Path, path) {
				kept = append(kept, f)
			}
		}
		p.Files = kept
		return nil
	})
}

// SaveFile persists content for an existing path. Live keystrokes are only
// relayed, never stored; this is the one operation that writes content.
// It does not broadcast: the saver's content is already on every client via
// the relay.
func (s *Service) SaveFile(ctx context.Context, projectId, roomId, userId, path, content string) error {
	path = types.NormalizePath(path)
	p, err := s.Get(projectId)
	if err != nil {
		return err
	}
	if _, err := s.getRoom(roomId); err != nil {
		return err
	}
	for i := range p.Files {
		if p.Files[i].Path == path {
			p.Files[i].Content = content
			p.Files[i].LastEditedBy = userId
			p.Files[i].UpdatedAt = time.Now()
			p.UpdatedAt = time.Now()
			return s.persister.StoreProject(*p)
		}
	}
	return ErrFileNotFound
}

// mutate resolves both the project and the room, applies fn, persists the
// project and broadcasts the entire authoritative file list. The full list
// instead of a delta keeps every client trivially consistent with the store.
func (s *Service) mutate(ctx context.Context, projectId, roomId string, fn func(*types.Project) error) ([]types.FileEntry, error) {
	p, err := s.Get(projectId)
	if err != nil {
		return nil, err
	}
	r, err := s.getRoom(roomId)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	if err := s.persister.StoreProject(*p); err != nil {
		return nil, err
	}
	s.publish(ctx, notify.Event{Kind: notify.KindFilesUpdated, RoomId: r.Id, ProjectId: p.Id, Files: p.Files})
	return p.Files, nil
}

func (s *Service) getRoom(roomId string) (*types.Room, error) {
	if roomId == "" {
		return nil, ErrRoomNotFound
	}
	r := &types.Room{Id: roomId}
	if err := s.persister.GetRoom(r); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *Service) publish(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		globals.AppLogger.Error("could not publish notify event", "kind", event.Kind, "room", event.RoomId, "error", err)
	}
}
