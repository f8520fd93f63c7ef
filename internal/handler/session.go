package handler

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"

	"github.com/gogogo1024/accesskit"
	"github.com/gogogo1024/accesskit/acl"
)

const errInvalidJSON = "invalid json"
const errUnknownSession = "unknown session"

type openSessionRequest struct {
	ResourceID string `json:"resource_id"`
	ActingUser string `json:"acting_user,omitempty"`
}

type openSessionResponse struct {
	SessionID string `json:"session_id"`
}

// SessionOpen POST /v1/sessions
func SessionOpen(ctx context.Context, c *app.RequestContext) {
	var req openSessionRequest
	if err := c.Bind(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": errInvalidJSON})
		return
	}
	if req.ResourceID == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "resource_id is required"})
		return
	}
	models, dir := wiring()
	if models == nil || dir == nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "handler not configured"})
		return
	}

	s := accesskit.NewSession(models(req.ResourceID, req.ActingUser), dir)
	if err := s.Open(ctx); err != nil {
		c.JSON(consts.StatusBadGateway, utils.H{"error": err.Error()})
		return
	}
	c.JSON(consts.StatusOK, openSessionResponse{SessionID: registry.add(s)})
}

type entryView struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Level    int    `json:"level"`
}

type sessionView struct {
	State  string      `json:"state"`
	Public bool        `json:"public"`
	Users  []entryView `json:"users"`
	Groups []entryView `json:"groups"`
}

// SessionGet GET /v1/sessions/:id
func SessionGet(ctx context.Context, c *app.RequestContext) {
	s, ok := sessionParam(c)
	if !ok {
		return
	}
	view := sessionView{
		State:  s.State().String(),
		Public: s.Public(),
		Users:  entryViews(s.Users()),
		Groups: entryViews(s.Groups()),
	}
	c.JSON(consts.StatusOK, view)
}

type principalRequest struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// PrincipalAdd POST /v1/sessions/:id/principals
//
// Resolution is asynchronous; the entry appears once the directory fetch
// completes. Duplicate additions are absorbed silently.
func PrincipalAdd(ctx context.Context, c *app.RequestContext) {
	s, ok := sessionParam(c)
	if !ok {
		return
	}
	ref, ok := bindRef(c)
	if !ok {
		return
	}
	s.AddPrincipal(ref)
	c.Status(consts.StatusAccepted)
}

// PrincipalRemove DELETE /v1/sessions/:id/principals
func PrincipalRemove(ctx context.Context, c *app.RequestContext) {
	s, ok := sessionParam(c)
	if !ok {
		return
	}
	ref, ok := bindRef(c)
	if !ok {
		return
	}
	s.RemovePrincipal(ref)
	c.Status(consts.StatusOK)
}

type levelRequest struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// LevelSet POST /v1/sessions/:id/level
func LevelSet(ctx context.Context, c *app.RequestContext) {
	s, ok := sessionParam(c)
	if !ok {
		return
	}
	var req levelRequest
	if err := c.Bind(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": errInvalidJSON})
		return
	}
	ref := acl.Ref{Type: acl.PrincipalType(req.Type), ID: req.ID}
	if !ref.Valid() {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "type must be user|group and id is required"})
		return
	}
	level := acl.Level(req.Level)
	if !level.Valid() {
		c.JSON(consts.StatusBadRequest, utils.H{"error": acl.ErrInvalidLevel.Error()})
		return
	}
	s.SetLevel(ref, level)
	c.Status(consts.StatusOK)
}

type publicRequest struct {
	Public bool `json:"public"`
}

// PublicSet POST /v1/sessions/:id/public
func PublicSet(ctx context.Context, c *app.RequestContext) {
	s, ok := sessionParam(c)
	if !ok {
		return
	}
	var req publicRequest
	if err := c.Bind(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": errInvalidJSON})
		return
	}
	s.SetPublic(req.Public)
	c.Status(consts.StatusOK)
}

type saveRequest struct {
	Recurse bool `json:"recurse"`
}

type saveResponse struct {
	Saved   bool `json:"saved"`
	Recurse bool `json:"recurse"`
}

// SessionSave POST /v1/sessions/:id/save
//
// A success closes and unregisters the session. Failures leave it
// registered and editable so the save can be corrected and retried.
func SessionSave(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	s, ok := registry.get(id)
	if !ok || !isUUID(id) {
		c.JSON(consts.StatusNotFound, utils.H{"error": errUnknownSession})
		return
	}
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": errInvalidJSON})
		return
	}

	err := s.Save(ctx, req.Recurse)
	switch {
	case err == nil:
		registry.remove(id)
		c.JSON(consts.StatusOK, saveResponse{Saved: true, Recurse: req.Recurse})
	case errors.Is(err, accesskit.ErrSaveInFlight):
		c.JSON(consts.StatusConflict, utils.H{"error": err.Error()})
	case errors.Is(err, acl.ErrInvalidLevel):
		c.JSON(consts.StatusUnprocessableEntity, utils.H{"error": err.Error()})
	case errors.Is(err, accesskit.ErrSessionClosed):
		registry.remove(id)
		c.JSON(consts.StatusGone, utils.H{"error": err.Error()})
	default:
		c.JSON(consts.StatusBadGateway, utils.H{"error": err.Error()})
	}
}

// SessionClose DELETE /v1/sessions/:id
func SessionClose(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	if s, ok := registry.get(id); ok {
		s.Close()
		registry.remove(id)
	}
	c.Status(consts.StatusOK)
}

func sessionParam(c *app.RequestContext) (*accesskit.Session, bool) {
	id := c.Param("id")
	if !isUUID(id) {
		c.JSON(consts.StatusNotFound, utils.H{"error": errUnknownSession})
		return nil, false
	}
	s, ok := registry.get(id)
	if !ok {
		c.JSON(consts.StatusNotFound, utils.H{"error": errUnknownSession})
		return nil, false
	}
	return s, true
}

func bindRef(c *app.RequestContext) (acl.Ref, bool) {
	var req principalRequest
	if err := c.Bind(&req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": errInvalidJSON})
		return acl.Ref{}, false
	}
	ref := acl.Ref{Type: acl.PrincipalType(req.Type), ID: req.ID}
	if !ref.Valid() {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "type must be user|group and id is required"})
		return acl.Ref{}, false
	}
	return ref, true
}

func entryViews(entries []acl.Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryView{
			Type:     string(e.Ref.Type),
			ID:       e.Ref.ID,
			Title:    e.Title,
			Subtitle: e.Subtitle,
			Level:    int(e.Level),
		})
	}
	return out
}

func isUUID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}
