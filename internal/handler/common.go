package handler

import (
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	pkgerrors "CrewWatch/pkg/errors"
)

var errInvalidID = errors.New("invalid id in path")

func errUnauthorized() error {
	return pkgerrors.Unauthorized
}

// parseIDParam 解析路径里的数字 ID
func parseIDParam(c *app.RequestContext, name string) (int64, bool) {
	raw := c.Param(name)
	if raw == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
