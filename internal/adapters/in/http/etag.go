package http

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func etagOf(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// matches reports whether an If-None-Match header value names tag.
func matches(ifNoneMatch, tag string) bool {
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}

// writeTracked sends body with its ETag. A GET whose If-None-Match names the tag gets
// 304; mutation responses always carry the body.
func writeTracked(c echo.Context, code int, body []byte) error {
	tag := etagOf(body)
	h := c.Response().Header()
	h.Set("Cache-Control", "no-cache")
	h.Set("ETag", tag)

	if code == http.StatusOK && c.Request().Method == http.MethodGet {
		if inm := c.Request().Header.Get("If-None-Match"); inm != "" && matches(inm, tag) {
			return c.NoContent(http.StatusNotModified)
		}
	}
	return c.Blob(code, echo.MIMEApplicationJSON, body)
}
