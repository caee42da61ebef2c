package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/accountd/internal/services"
	"github.com/charlesng35/accountd/internal/store"
	"github.com/charlesng35/accountd/pkg/response"
)

// UserHandler exposes CRUD over user records. Every route sits behind the
// authentication gate.
type UserHandler struct {
	stores    *store.Registry
	directory *services.DirectoryService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(stores *store.Registry, directory *services.DirectoryService) *UserHandler {
	return &UserHandler{stores: stores, directory: directory}
}

type updateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,notblank,max=255"`
	Username *string `json:"username" validate:"omitempty,notblank,max=255"`
	Password *string `json:"password" validate:"omitempty,notblank"`
	Verified *bool   `json:"verified"`
}

// GET /users/:backend
func (h *UserHandler) List(c *gin.Context) {
	st, _, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}

	users, err := h.directory.List(requestContext(c), st)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Users retrieved", gin.H{"users": users})
}

// GET /users/:backend/:id
func (h *UserHandler) Get(c *gin.Context) {
	st, _, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}

	user, err := h.directory.Get(requestContext(c), st, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User retrieved", gin.H{"user": user})
}

// PUT /users/:backend/:id
func (h *UserHandler) Update(c *gin.Context) {
	st, _, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}
	var req updateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.directory.Update(requestContext(c), st, c.Param("id"), services.UpdateUserInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Verified: req.Verified,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User updated", gin.H{"user": user})
}

// DELETE /users/:backend/:id
func (h *UserHandler) Delete(c *gin.Context) {
	st, _, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}

	if err := h.directory.Delete(requestContext(c), st, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "User deleted", nil)
}

// DELETE /users/:backend
func (h *UserHandler) DeleteAll(c *gin.Context) {
	st, _, ok := resolveStore(c, h.stores)
	if !ok {
		return
	}

	if err := h.directory.DeleteAll(requestContext(c), st); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, "All users deleted", nil)
}
