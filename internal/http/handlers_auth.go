package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/storage"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	user, err := s.users.CreateUser(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)), strings.TrimSpace(req.Name), hash)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, hash, err := s.users.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, storage.ErrNotFound) {
		// Same answer as a wrong password, no account enumeration
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	if !auth.CheckPassword(hash, req.Password) {
		slog.InfoContext(r.Context(), "Login rejected", "user_id", user.ID)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		writeStorageError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
