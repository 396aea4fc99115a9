// Package http exposes the dispatch core as a REST API.
package http

import (
	"context"
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type (
	CreateCourierHandler interface {
		Handle(ctx context.Context, cmd commands.CreateCourierCommand) error
	}
	AddCourierStorageHandler interface {
		Handle(ctx context.Context, cmd commands.AddCourierStorageCommand) error
	}
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}
	GetAllCouriersHandler interface {
		Handle(ctx context.Context, query queries.GetAllCouriersQuery) ([]queries.CourierResponse, error)
	}
	GetBusyCouriersHandler interface {
		Handle(ctx context.Context, query queries.GetBusyCouriersQuery) ([]queries.CourierResponse, error)
	}
	GetUncompletedOrdersHandler interface {
		Handle(ctx context.Context, query queries.GetUncompletedOrdersQuery) ([]queries.GetUncompletedOrdersQueryResponse, error)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateCourier        CreateCourierHandler
	AddCourierStorage    AddCourierStorageHandler
	CreateOrder          CreateOrderHandler
	GetAllCouriers       GetAllCouriersHandler
	GetBusyCouriers      GetBusyCouriersHandler
	GetUncompletedOrders GetUncompletedOrdersHandler
}

func (h Handlers) validate() error {
	return errors.Join(
		requireHandler("CreateCourier", h.CreateCourier),
		requireHandler("AddCourierStorage", h.AddCourierStorage),
		requireHandler("CreateOrder", h.CreateOrder),
		requireHandler("GetAllCouriers", h.GetAllCouriers),
		requireHandler("GetBusyCouriers", h.GetBusyCouriers),
		requireHandler("GetUncompletedOrders", h.GetUncompletedOrders),
	)
}

func requireHandler(name string, h any) error {
	if h == nil {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}

// Server maps HTTP requests onto commands and queries.
type Server struct {
	handlers Handlers
	contract *Contract
	echo     *echo.Echo
	logger   *logrus.Entry
}

func NewServer(handlers Handlers, contract *Contract, logger *logrus.Entry) (*Server, error) {
	if err := handlers.validate(); err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, errs.NewValueIsRequiredError("contract")
	}

	s := &Server{
		handlers: handlers,
		contract: contract,
		echo:     echo.New(),
		logger:   logger.WithField("component", "http"),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.WARN)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			entry := s.logger.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request failed")
				return nil
			}
			entry.Debug("request served")
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/openapi.json", s.contract.serve)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1", s.contract.Middleware())
	api.GET("/couriers", s.GetCouriers)
	api.POST("/couriers", s.CreateCourier)
	api.GET("/couriers/busy", s.GetBusyCouriers)
	api.POST("/couriers/:courierId/storage-places", s.AddStoragePlace)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/active", s.GetOrders)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.logger.WithField("addr", addr).Info("http server listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// GetCouriers handles GET /api/v1/couriers.
func (s *Server) GetCouriers(c echo.Context) error {
	couriers, err := s.handlers.GetAllCouriers.Handle(c.Request().Context(), queries.NewGetAllCouriersQuery())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toCouriers(couriers))
}

// GetBusyCouriers handles GET /api/v1/couriers/busy.
func (s *Server) GetBusyCouriers(c echo.Context) error {
	couriers, err := s.handlers.GetBusyCouriers.Handle(c.Request().Context(), queries.NewGetBusyCouriersQuery())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toCouriers(couriers))
}

// CreateCourier handles POST /api/v1/couriers. Without a location the courier starts at a random cell.
func (s *Server) CreateCourier(c echo.Context) error {
	var body NewCourier
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	var location *kernel.Location
	if body.Location != nil {
		loc, err := kernel.NewLocation(kernel.Coordinate(body.Location.X), kernel.Coordinate(body.Location.Y))
		if err != nil {
			return s.fail(c, err)
		}
		location = &loc
	}

	id := kernel.NewUUID()
	cmd, err := commands.NewCreateCourierCommand(id, body.Name, body.Speed, location)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.handlers.CreateCourier.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, Created{ID: id.String()})
}

// AddStoragePlace handles POST /api/v1/couriers/{courierId}/storage-places.
func (s *Server) AddStoragePlace(c echo.Context) error {
	var rawID string
	err := runtime.BindStyledParameterWithOptions("simple", "courierId", c.Param("courierId"), &rawID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return badRequest(c, "invalid courierId")
	}
	courierID, err := kernel.UUIDFromString(rawID)
	if err != nil {
		return badRequest(c, "invalid courierId")
	}

	var body NewStoragePlace
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cmd, err := commands.NewAddCourierStorageCommand(courierID, body.Name, body.TotalVolume)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.handlers.AddCourierStorage.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.NoContent(http.StatusCreated)
}

// CreateOrder handles POST /api/v1/orders. Repeating a request with the same orderId is a no-op.
func (s *Server) CreateOrder(c echo.Context) error {
	var body NewOrder
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	id := kernel.NewUUID()
	if body.OrderID != nil {
		parsed, err := kernel.UUIDFromString(*body.OrderID)
		if err != nil {
			return badRequest(c, "invalid orderId")
		}
		id = parsed
	}

	cmd, err := commands.NewCreateOrderCommand(id, body.Street, body.Volume)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.handlers.CreateOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, Created{ID: id.String()})
}

// GetOrders handles GET /api/v1/orders/active.
func (s *Server) GetOrders(c echo.Context) error {
	orders, err := s.handlers.GetUncompletedOrders.Handle(c.Request().Context(), queries.NewGetUncompletedOrdersQuery())
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]Order, len(orders))
	for i, o := range orders {
		response[i] = Order{
			ID:       o.ID.String(),
			Location: toLocation(o.Location),
			Status:   o.Status.String(),
		}
		if o.CourierID != nil {
			courierID := o.CourierID.String()
			response[i].CourierID = &courierID
		}
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) fail(c echo.Context, err error) error {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithField("uri", c.Request().RequestURI).Error("request handling failed")
		message = http.StatusText(status)
	}
	return c.JSON(status, Error{Code: status, Message: message})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrStateConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
