package http

import (
	"net/http"

	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/services"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type authResponse struct {
	User *models.User `json:"user"`
	services.TokenPair
}

func (h *handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	ctx := c.Request.Context()

	u, err := h.users.Register(ctx, services.Registration{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeError(c, err)
		return
	}
	pair, _, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse{User: u, TokenPair: *pair})
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	pair, u, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse{User: u, TokenPair: *pair})
}

func (h *handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	pair, err := h.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *handler) logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	if err := h.users.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// updateProfile ignores email and password; models.UserUpdate has no such
// fields.
func (h *handler) updateProfile(c *gin.Context) {
	var upd models.UserUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), userID(c), upd)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type confirmAvatarRequest struct {
	Key string `json:"key" binding:"required"`
}

func (h *handler) avatarUploadURL(c *gin.Context) {
	key, url, err := h.avatars.UploadURL(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "url": url})
}

func (h *handler) confirmAvatar(c *gin.Context) {
	var req confirmAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	u, err := h.avatars.Confirm(c.Request.Context(), userID(c), req.Key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *handler) avatar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	url, err := h.avatars.DownloadURL(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}
