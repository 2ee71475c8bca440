package http

import (
	"net/http"
	"time"

	"github.com/devquest/codenexus/internal/common"
	"github.com/devquest/codenexus/internal/logging"
	"github.com/devquest/codenexus/internal/server/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func newRouter(h *handler, logger logging.Logger, limiter ratelimit.Limiter, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(accessLog(logger))
	// cors.New panics on an empty origin list.
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", common.AuthorizationHeaderName},
			ExposeHeaders:    []string{"Content-Length", common.RequestIDHeaderName},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	optional := optionalAuth(h.users)
	required := requireAuth(h.users)
	limited := rateLimit(limiter, logger)

	api := r.Group("/api")

	// auth
	api.POST("/register", limited, h.register)
	api.POST("/login", limited, h.login)
	api.POST("/refresh", h.refresh)
	api.POST("/logout", h.logout)
	api.GET("/user", required, h.me)
	api.PUT("/profile", required, limited, h.updateProfile)
	api.POST("/user/avatar/upload-url", required, limited, h.avatarUploadURL)
	api.PUT("/user/avatar", required, limited, h.confirmAvatar)

	// categories and threads
	api.GET("/categories", h.categories)
	api.GET("/categories/:id", h.category)
	api.GET("/categories/:id/threads", h.categoryThreads)
	api.GET("/threads", h.threads)
	api.GET("/threads/popular", h.popularThreads)
	api.GET("/threads/recent", h.threads)
	api.GET("/threads/:id", h.thread)
	api.POST("/threads", required, limited, h.createThread)
	api.PUT("/threads/:id", required, limited, h.updateThread)

	// posts
	api.GET("/threads/:id/posts", optional, h.posts)
	api.POST("/threads/:id/posts", required, limited, h.createPost)
	api.PUT("/posts/:id", required, limited, h.updatePost)
	api.DELETE("/posts/:id", required, limited, h.deletePost)
	api.POST("/posts/:id/vote", required, limited, h.vote)
	api.POST("/posts/:id/flag", required, limited, h.flagPost)

	// moderation
	api.GET("/flags", required, h.flags)
	api.PUT("/flags/:id", required, h.updateFlag)

	// subscriptions and notifications
	api.GET("/subscriptions", required, h.subscriptions)
	api.POST("/subscriptions", required, limited, h.subscribe)
	api.DELETE("/subscriptions/:id", required, h.unsubscribe)
	api.GET("/notifications", required, h.notifications)
	api.GET("/notifications/unread-count", required, h.unreadCount)
	api.PUT("/notifications/:id/read", required, h.markRead)
	api.PUT("/notifications/mark-all-read", required, h.markAllRead)

	// search, users, badges
	api.GET("/search", h.search)
	api.GET("/users/top", h.topUsers)
	api.GET("/users/:id/profile", h.profile)
	api.GET("/users/:id/reputation", h.reputation)
	api.GET("/users/:id/avatar", h.avatar)
	api.GET("/users/:id/badges", h.userBadges)
	api.PUT("/users/:id/badges/:badgeId/display", required, h.setBadgeDisplay)
	api.GET("/badges", h.badges)
	api.GET("/badges/:id", h.badge)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	return r
}
