package project

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrPathExists      = errors.New("path already exists")
	ErrFileNotFound    = errors.New("file not found")
	ErrNameRequired    = errors.New("project name is required")
	ErrPathRequired    = errors.New("path is required")
)
