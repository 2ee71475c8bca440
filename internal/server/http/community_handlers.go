package http

import (
	"net/http"
	"strconv"

	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/services"
	"github.com/gin-gonic/gin"
)

type subscribeRequest struct {
	ThreadID         *int64 `json:"threadId"`
	CategoryID       *int64 `json:"categoryId"`
	NotifyByEmail    *bool  `json:"notifyByEmail"`
	NotifyInPlatform *bool  `json:"notifyInPlatform"`
}

type badgeDisplayRequest struct {
	Display bool `json:"display"`
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (h *handler) subscriptions(c *gin.Context) {
	subs, err := h.forum.Subscriptions(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (h *handler) subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	sub, err := h.forum.Subscribe(c.Request.Context(), userID(c), services.NewSubscription{
		ThreadID:         req.ThreadID,
		CategoryID:       req.CategoryID,
		NotifyByEmail:    boolOr(req.NotifyByEmail, true),
		NotifyInPlatform: boolOr(req.NotifyInPlatform, true),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *handler) unsubscribe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.forum.Unsubscribe(c.Request.Context(), userID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) notifications(c *gin.Context) {
	p, ok := page(c)
	if !ok {
		return
	}
	list, err := h.forum.Notifications(c.Request.Context(), userID(c), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) unreadCount(c *gin.Context) {
	n, err := h.forum.UnreadCount(c.Request.Context(), userID(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *handler) markRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.forum.MarkRead(c.Request.Context(), userID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) markAllRead(c *gin.Context) {
	if err := h.forum.MarkAllRead(c.Request.Context(), userID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) search(c *gin.Context) {
	p, ok := page(c)
	if !ok {
		return
	}
	res, err := h.forum.Search(c.Request.Context(), c.Query("q"), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) topUsers(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	users, err := h.forum.TopUsers(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *handler) profile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.forum.Profile(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) reputation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rep, err := h.forum.Reputation(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reputation": rep})
}

func (h *handler) userBadges(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	badges, err := h.forum.UserBadges(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, badges)
}

func (h *handler) setBadgeDisplay(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	badgeID, ok := pathID(c, "badgeId")
	if !ok {
		return
	}
	var req badgeDisplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	ub, err := h.forum.SetBadgeDisplay(c.Request.Context(), userID(c), id, badgeID, req.Display)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ub)
}

func (h *handler) badges(c *gin.Context) {
	filter := models.BadgeFilter{Category: c.Query("category")}
	if raw := c.Query("level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "Invalid level")
			return
		}
		filter.Level = level
	}
	badges, err := h.forum.Badges(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, badges)
}

func (h *handler) badge(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.forum.Badge(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
