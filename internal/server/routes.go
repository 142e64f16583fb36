package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/berfenger/ld2450ble2mqtt/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const requestTimeout = 5 * time.Second

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)

	api := e.Group("/api")
	api.GET("/entities", s.EntitiesHandler)
	api.GET("/history/:key", s.HistoryHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

type entitiesResponse struct {
	EntryId   string               `json:"entry_id"`
	DeviceId  string               `json:"device_id"`
	Name      string               `json:"name"`
	Connected bool                 `json:"connected"`
	Entities  []domain.EntityState `json:"entities"`
}

func (s *Server) EntitiesHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetEntitiesRequest{}, requestTimeout).Result()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.GetEntitiesResponse)
	if !ok || response.HasResponseError() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "entities unavailable")
	}
	return c.JSON(http.StatusOK, entitiesResponse{
		EntryId:   response.EntryId,
		DeviceId:  response.Device.Id,
		Name:      response.Device.Name,
		Connected: response.Connected,
		Entities:  response.Entities,
	})
}

// HistoryHandler returns the latest readings of the entity with the given
// sensor key. The optional limit query parameter caps the result size.
func (s *Server) HistoryHandler(c echo.Context) error {
	key := domain.SensorKey(c.Param("key"))
	if !key.Valid() {
		return echo.NewHTTPError(http.StatusNotFound, "unknown sensor key")
	}
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}

	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetHistoryRequest{
		UniqueId: domain.UniqueId(s.address, key),
		Limit:    limit,
	}, requestTimeout).Result()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.GetHistoryResponse)
	if !ok {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "history unavailable")
	}
	if response.HasResponseError() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, response.GetResponseError().Error())
	}
	return c.JSON(http.StatusOK, response.Readings)
}
