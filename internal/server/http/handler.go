package http

import (
	"strconv"

	"github.com/devquest/codenexus/internal/logging"
	"github.com/devquest/codenexus/internal/server/services"
	"github.com/devquest/codenexus/internal/server/storage"
	"github.com/gin-gonic/gin"
)

type handler struct {
	forum   *services.ForumService
	users   *services.UserService
	avatars *services.AvatarService
	logger  logging.Logger
}

// pathID parses a positive integer path parameter. It writes a 400 and
// returns false when the parameter is malformed.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return v, true
}

// page reads ?limit= and ?offset=. Missing values select the defaults.
func page(c *gin.Context) (storage.Page, bool) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return storage.Page{}, false
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return storage.Page{}, false
	}
	return storage.Page{Limit: limit, Offset: offset}, true
}

// userID returns the authenticated caller; requireAuth guarantees it.
func userID(c *gin.Context) int64 {
	id, _ := currentUserID(c)
	return id
}
