package http

import (
	"net/http"

	"github.com/devquest/codenexus/internal/server/models"
	"github.com/devquest/codenexus/internal/server/services"
	"github.com/gin-gonic/gin"
)

type createThreadRequest struct {
	Title      string `json:"title" binding:"required"`
	CategoryID int64  `json:"categoryId" binding:"required"`
	Content    string `json:"content"`
}

type createPostRequest struct {
	Content  string `json:"content" binding:"required"`
	ParentID *int64 `json:"parentId"`
}

type updatePostRequest struct {
	Content string `json:"content" binding:"required"`
}

type voteRequest struct {
	Value int `json:"value"`
}

type flagRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type flagStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handler) categories(c *gin.Context) {
	cats, err := h.forum.Categories(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *handler) category(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cat, err := h.forum.Category(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handler) categoryThreads(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := page(c)
	if !ok {
		return
	}
	threads, err := h.forum.CategoryThreads(c.Request.Context(), id, p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, threads)
}

func (h *handler) threads(c *gin.Context) {
	p, ok := page(c)
	if !ok {
		return
	}
	threads, err := h.forum.Threads(c.Request.Context(), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, threads)
}

func (h *handler) popularThreads(c *gin.Context) {
	p, ok := page(c)
	if !ok {
		return
	}
	threads, err := h.forum.PopularThreads(c.Request.Context(), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, threads)
}

func (h *handler) thread(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.forum.ViewThread(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) createThread(c *gin.Context) {
	var req createThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	t, err := h.forum.CreateThread(c.Request.Context(), userID(c), services.NewThread{
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Content:    req.Content,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *handler) updateThread(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var upd models.ThreadUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	t, err := h.forum.UpdateThread(c.Request.Context(), userID(c), id, upd)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) posts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, ok := page(c)
	if !ok {
		return
	}
	viewer, _ := currentUserID(c)
	posts, err := h.forum.Posts(c.Request.Context(), viewer, id, p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *handler) createPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	p, err := h.forum.CreatePost(c.Request.Context(), userID(c), services.NewPost{
		ThreadID: id,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handler) updatePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	p, err := h.forum.UpdatePost(c.Request.Context(), userID(c), id, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) deletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.forum.DeletePost(c.Request.Context(), userID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) vote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	res, err := h.forum.Vote(c.Request.Context(), userID(c), id, req.Value)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) flagPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	f, err := h.forum.FlagPost(c.Request.Context(), userID(c), id, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *handler) flags(c *gin.Context) {
	p, ok := page(c)
	if !ok {
		return
	}
	flags, err := h.forum.Flags(c.Request.Context(), c.Query("status"), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flags)
}

func (h *handler) updateFlag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req flagStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid data")
		return
	}
	f, err := h.forum.ResolveFlag(c.Request.Context(), id, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}
