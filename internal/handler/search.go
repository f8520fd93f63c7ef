package handler

import (
	"context"
	"log"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/gogogo1024/accesskit/acl"
)

const defaultSearchTopK = 10

type principalView struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type searchResponse struct {
	Principals []principalView `json:"principals"`
}

// PrincipalSearch GET /v1/principals/search?q=...&top_k=...
//
// Uses the vector index when one is wired and falls back to substring
// matching when it is absent or errors.
func PrincipalSearch(ctx context.Context, c *app.RequestContext) {
	keyword := string(c.Query("q"))
	if keyword == "" {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "q is required"})
		return
	}
	topK := defaultSearchTopK
	if raw := string(c.Query("top_k")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(consts.StatusBadRequest, utils.H{"error": "top_k must be a positive integer"})
			return
		}
		topK = n
	}

	index, fallback := searchWiring()
	var refs []acl.Ref
	if index != nil {
		found, err := index.Query(ctx, keyword, topK)
		if err != nil {
			log.Printf("handler: principal search %q: %v", keyword, err)
		} else {
			refs = found
		}
	}
	if refs == nil && fallback != nil {
		refs = fallback(keyword, topK)
	}

	resp := searchResponse{Principals: make([]principalView, 0, len(refs))}
	for _, ref := range refs {
		resp.Principals = append(resp.Principals, principalView{Type: string(ref.Type), ID: ref.ID})
	}
	c.JSON(consts.StatusOK, resp)
}
