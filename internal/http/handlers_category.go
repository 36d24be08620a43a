package http

import (
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.ListCategories(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	resp := struct {
		Categories []categoryResponse `json:"categories"`
	}{Categories: make([]categoryResponse, 0, len(cats))}
	for _, c := range cats {
		resp.Categories = append(resp.Categories, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFromRequest(w, r)
	if !ok {
		return
	}

	saved, err := s.categories.CreateCategory(r.Context(), userIDFrom(r.Context()), category)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(saved))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFromRequest(w, r)
	if !ok {
		return
	}
	category.ID = r.PathValue("id")

	if err := s.categories.UpdateCategory(r.Context(), userIDFrom(r.Context()), category); err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.DeleteCategory(r.Context(), userIDFrom(r.Context()), r.PathValue("id")); err != nil {
		writeStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func categoryFromRequest(w http.ResponseWriter, r *http.Request) (core.Category, bool) {
	var req categoryRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Category{}, false
	}

	category := core.Category{
		Name:  req.Name,
		Type:  core.TransactionType(req.Type),
		Icon:  req.Icon,
		Color: req.Color,
	}
	if err := category.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Category{}, false
	}
	return category, true
}
