package handler

import (
	"github.com/cloudwego/hertz/pkg/app/server"
)

// RegisterRoutes binds the session and search endpoints.
func RegisterRoutes(h *server.Hertz) {
	v1 := h.Group("/v1")
	v1.POST("/sessions", SessionOpen)
	v1.GET("/sessions/:id", SessionGet)
	v1.DELETE("/sessions/:id", SessionClose)
	v1.POST("/sessions/:id/principals", PrincipalAdd)
	v1.DELETE("/sessions/:id/principals", PrincipalRemove)
	v1.POST("/sessions/:id/level", LevelSet)
	v1.POST("/sessions/:id/public", PublicSet)
	v1.POST("/sessions/:id/save", SessionSave)
	v1.GET("/principals/search", PrincipalSearch)
}
