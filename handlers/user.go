package handlers

import (
	"net/http"

	"cropconnect/models"
	"cropconnect/services/user"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Service user.UserService
}

// Register handles POST /api/users/register.
func (h *UserHandler) Register(c *gin.Context) {
	var in user.RegisterInput
	if !bind(c, &in) {
		return
	}
	res, err := h.Service.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"token": res.Token, "user": res.User})
}

// Login handles POST /api/users/login.
func (h *UserHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bind(c, &in) {
		return
	}
	res, err := h.Service.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"token": res.Token, "user": res.User})
}

func (h *UserHandler) Me(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	u, err := h.Service.Me(c.Request.Context(), a.ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": u})
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var upd models.UserUpdate
	if !bind(c, &upd) {
		return
	}
	u, err := h.Service.UpdateProfile(c.Request.Context(), a.ID, upd)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": u})
}

// UploadImage handles POST /api/users/me/image (multipart field "image").
func (h *UserHandler) UploadImage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	file, ok := formImage(c)
	if !ok {
		return
	}
	defer file.Close()

	u, err := h.Service.SetProfileImage(c.Request.Context(), a.ID, file)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": u})
}
