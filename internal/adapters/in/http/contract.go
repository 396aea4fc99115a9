package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

//go:embed openapi.json
var contractDocument []byte

var registerDocsOnce sync.Once

// Contract is the loaded and validated OpenAPI document of the REST surface.
type Contract struct {
	doc    *openapi3.T
	router routers.Router
	raw    []byte
}

func LoadContract() (*Contract, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(contractDocument)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	registerDocsOnce.Do(func() {
		swag.Register(swag.Name, swaggerDoc(contractDocument))
	})

	return &Contract{doc: doc, router: router, raw: contractDocument}, nil
}

func (c *Contract) Document() *openapi3.T {
	return c.doc
}

// ValidateRequest checks parameters and body against the operation the request routes to.
// Requests outside the document are left alone.
func (c *Contract) ValidateRequest(req *http.Request) error {
	route, pathParams, err := c.router.FindRoute(req)
	if err != nil {
		if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
			return nil
		}
		return err
	}

	return openapi3filter.ValidateRequest(req.Context(), &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
		Options:    &openapi3filter.Options{MultiError: false},
	})
}

// Middleware rejects requests that break the contract with 400.
func (c *Contract) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := c.ValidateRequest(ctx.Request()); err != nil {
				return ctx.JSON(http.StatusBadRequest, Error{
					Code:    http.StatusBadRequest,
					Message: requestErrorMessage(err),
				})
			}
			return next(ctx)
		}
	}
}

func (c *Contract) serve(ctx echo.Context) error {
	return ctx.Blob(http.StatusOK, echo.MIMEApplicationJSON, c.raw)
}

func requestErrorMessage(err error) string {
	var requestErr *openapi3filter.RequestError
	if errors.As(err, &requestErr) {
		if requestErr.Parameter != nil {
			return fmt.Sprintf("parameter %q: %s", requestErr.Parameter.Name, requestErr.Reason)
		}
		if requestErr.Reason != "" {
			return "request body: " + requestErr.Reason
		}
		if requestErr.Err != nil {
			return "request body: " + requestErr.Err.Error()
		}
	}
	return err.Error()
}

type swaggerDoc []byte

func (d swaggerDoc) ReadDoc() string {
	return string(d)
}
