package http

import (
	"log/slog"
	"net/http"

	"worklog/internal/core"
	"worklog/internal/services"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, viewOfUser(u))
	}
	writeJSON(w, http.StatusOK, views)
}

type createUserRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Name     string    `json:"name"`
	Role     core.Role `json:"role"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = core.RoleUser
	}

	user, err := s.auth.CreateUser(r.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOfUser(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOfUser(user))
}

type updateUserRequest struct {
	Email *string    `json:"email"`
	Name  *string    `json:"name"`
	Role  *core.Role `json:"role"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.users.Update(r.Context(), r.PathValue("id"), services.UserUpdate{
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Role changes take effect on the next login; drop live sessions now.
	if req.Role != nil {
		s.sessions.DeleteForUser(user.ID)
	}
	writeJSON(w, http.StatusOK, viewOfUser(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	sess, _ := sessionFrom(r.Context())
	if sess.UserID == id {
		writeError(w, http.StatusUnprocessableEntity, "cannot delete your own account")
		return
	}

	removed, err := s.users.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.sessions.DeleteForUser(id)

	slog.InfoContext(r.Context(), "User deleted via admin API",
		"user_id", id,
		"entries_removed", removed)
	writeJSON(w, http.StatusOK, map[string]any{"entriesRemoved": removed})
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.auth.ResetPassword(r.Context(), id, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.sessions.DeleteForUser(id)
	w.WriteHeader(http.StatusNoContent)
}
