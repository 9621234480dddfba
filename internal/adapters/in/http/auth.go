package http

import (
	"net/http"

	"tracking/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"

	actorKey = "actor"
)

// Authenticate turns the identity headers set by the gateway into a kernel.Actor.
// Missing or malformed headers are rejected with 401.
func Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := actorFromHeaders(c.Request().Header)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, Error{
					Code:    http.StatusUnauthorized,
					Kind:    "Unauthenticated",
					Message: err.Error(),
				})
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

func actorFromHeaders(h http.Header) (kernel.Actor, error) {
	id, err := kernel.UUIDFromString(h.Get(HeaderActorID))
	if err != nil {
		return kernel.Actor{}, err
	}
	role, err := kernel.ParseRole(h.Get(HeaderActorRole))
	if err != nil {
		return kernel.Actor{}, err
	}
	return kernel.NewActor(id, role)
}

func actorOf(c echo.Context) kernel.Actor {
	actor, _ := c.Get(actorKey).(kernel.Actor)
	return actor
}
