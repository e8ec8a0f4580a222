package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxLimit = 100

// Page holds normalized offset pagination parameters.
type Page struct {
	Skip  int
	Limit int
}

// PageFromQuery parses skip/limit query parameters, clamping skip to >= 0
// and limit to 1..100. defaultLimit varies by resource.
func PageFromQuery(c *gin.Context, defaultLimit int) Page {
	p := Page{Skip: 0, Limit: defaultLimit}

	if v := c.Query("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.Skip = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			p.Limit = n
		}
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	return p
}
