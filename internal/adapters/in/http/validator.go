package http

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pharmadelivery/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// RequestValidator checks requests against the embedded OpenAPI document
// before they reach a handler.
type RequestValidator struct {
	doc    *openapi3.T
	router routers.Router
}

func NewRequestValidator() (*RequestValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &RequestValidator{doc: doc, router: router}, nil
}

// Document returns the raw embedded document.
func (v *RequestValidator) Document() []byte {
	return openAPIDocument
}

// Middleware rejects requests that do not match their operation with a 400.
// Requests the document does not describe are passed through and left to
// echo's routing.
func (v *RequestValidator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, pathParams, err := v.router.FindRoute(req)
			if err != nil {
				return next(c)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				},
			}
			if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return writeError(c, requestError(err))
			}
			return next(c)
		}
	}
}

// requestError keeps the schema dump out of the response: only the failing
// field and the reason are reported.
func requestError(err error) error {
	param := "body"
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) && reqErr.Parameter != nil {
		param = reqErr.Parameter.Name
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		if path := schemaErr.JSONPointer(); len(path) > 0 {
			return errs.NewValueIsInvalidErrorWithCause(strings.Join(path, "."), errors.New(schemaErr.Reason))
		}
		return errs.NewValueIsInvalidErrorWithCause(param, errors.New(schemaErr.Reason))
	}
	if reqErr != nil && reqErr.Reason != "" {
		return errs.NewValueIsInvalidErrorWithCause(param, errors.New(reqErr.Reason))
	}
	return errs.NewValueIsInvalidErrorWithCause(param, errors.New(http.StatusText(http.StatusBadRequest)))
}
