package api

import (
	"net/http"

	"github.com/codehive/codehive/project"
	"github.com/codehive/codehive/types"
	"github.com/gorilla/mux"
)

type createProjectRequest struct {
	Name   string `json:"name"`
	RoomId string `json:"roomId"`
}

type openProjectRequest struct {
	RoomId string `json:"roomId"`
}

type fileRequest struct {
	RoomId  string `json:"roomId"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

type renameFileRequest struct {
	RoomId  string `json:"roomId"`
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
}

type filesResponse struct {
	Files []types.FileEntry `json:"files"`
}

type createProjectResponse struct {
	Project *types.Project `json:"project"`
}

type projectHandler struct {
	projects *project.Service
}

func (h *projectHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user")
		return
	}
	req := createProjectRequest{}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.projects.Create(r.Context(), user.Id, req.Name, req.RoomId)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, createProjectResponse{Project: created})
}

func (h *projectHandler) listMine(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user")
		return
	}
	projects, err := h.projects.ListByOwner(user.Id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projects)
}

func (h *projectHandler) get(w http.ResponseWriter, r *http.Request) {
	found, err := h.projects.Get(mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, found)
}

func (h *projectHandler) open(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user")
		return
	}
	req := openProjectRequest{}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.projects.OpenInRoom(r.Context(), mux.Vars(r)["id"], req.RoomId, user.Id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

func (h *projectHandler) createFile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user")
		return
	}
	req := fileRequest{}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	files, err := h.projects.CreateFile(r.Context(), mux.Vars(r)["id"], req.RoomId, user.Id, req.Path, req.Content)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, filesResponse{Files: files})
}

func (h *projectHandler) renameFile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user")
		return
	}
	req := renameFileRequest{}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	files, err := h.projects.RenameFile(r.Context(), mux.Vars(r)["id"], req.RoomId, user.Id, req.OldPath, req.NewPath)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, filesResponse{Files: files})
}

func (h *projectHandler) deleteFile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user")
		return
	}
	req := fileRequest{}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	files, err := h.projects.DeleteFile(r.Context(), mux.Vars(r)["id"], req.RoomId, user.Id, req.Path)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, filesResponse{Files: files})
}

func (h *projectHandler) saveFile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing user")
		return
	}
	req := fileRequest{}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.projects.SaveFile(r.Context(), mux.Vars(r)["id"], req.RoomId, user.Id, req.Path, req.Content); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
