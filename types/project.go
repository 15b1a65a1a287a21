package types

import (
	"strings"
	"time"
)

// Project is the collaboratively edited unit of files. Files is a flat list
// of full paths; folders only exist implicitly as path prefixes.
type Project struct {
	Id          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	OwnerUserId string    `json:"ownerUserId" gorm:"index"`
	Files       FileList  `json:"files"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FileEntry is one path+content record inside a project's flat file list.
type FileEntry struct {
	Path         string    `json:"path"`
	Content      string    `json:"content"`
	Language     string    `json:"language,omitempty"`
	LastEditedBy string    `json:"lastEditedBy,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NormalizePath strips leading "/" and "./" segments and collapses repeated
// separators so that paths are comparable as stored.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	for {
		switch {
		case strings.HasPrefix(p, "/"):
			p = strings.TrimPrefix(p, "/")
		case strings.HasPrefix(p, "./"):
			p = strings.TrimPrefix(p, "./")
		default:
			for strings.Contains(p, "//") {
				p = strings.ReplaceAll(p, "//", "/")
			}
			return p
		}
	}
}

// HasFile reports whether the project contains an entry with exactly this
// path.
func (p *Project) HasFile(path string) bool {
	for i := range p.Files {
		if p.Files[i].Path == path {
			return true
		}
	}
	return false
}

// MatchesPrefix reports whether path equals prefix or lies under it as a
// folder. This is the one prefix contract used for rename and delete.
func MatchesPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
