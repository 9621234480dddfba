package http

import (
	"net/http"
	"sync"

	"tracking/api"
	"tracking/internal/core/domain/model/kernel"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	"github.com/swaggo/swag"
)

// ValidateRequest rejects requests that do not match the contract with 400.
// Routes the contract does not describe pass through untouched.
func ValidateRequest(router routers.Router) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, params, err := router.FindRoute(req)
			if err != nil {
				return next(c)
			}
			err = openapi3filter.ValidateRequest(req.Context(), &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: params,
				Route:      route,
			})
			if err != nil {
				return badRequest(c, err.Error())
			}
			return next(c)
		}
	}
}

// NewContractRouter builds the route matcher used by ValidateRequest.
func NewContractRouter(doc *openapi3.T) (routers.Router, error) {
	return gorillamux.NewRouter(doc)
}

// OpenAPIDocument handles GET /openapi.yaml.
func OpenAPIDocument(c echo.Context) error {
	return c.Blob(http.StatusOK, "application/yaml", api.Document)
}

type swaggerDoc []byte

func (d swaggerDoc) ReadDoc() string { return string(d) }

var registerOnce sync.Once

// registerSwagger publishes the contract to swag under the default instance
// name, where echo-swagger looks it up for doc.json. swag panics on a second
// registration, so routers built later reuse the first document.
func registerSwagger(doc *openapi3.T) error {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	registerOnce.Do(func() {
		swag.Register(swag.Name, swaggerDoc(raw))
	})
	return nil
}

func orderIDParam(c echo.Context) (kernel.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return kernel.UUID{}, err
	}
	return kernel.UUIDFromBytes(id[:])
}
