// Package server exposes the order service over HTTP and websocket.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/finvex/fxorders/internal/orders"
	"github.com/finvex/fxorders/internal/relay"
)

// Server wires the HTTP routes to the order service and the broadcast relay.
type Server struct {
	logger   *zap.Logger
	orders   *orders.Service
	relay    *relay.Relay
	upgrader websocket.Upgrader
}

// New creates the HTTP server.
func New(logger *zap.Logger, ordersSvc *orders.Service, eventRelay *relay.Relay) *Server {
	return &Server{
		logger: logger,
		orders: ordersSvc,
		relay:  eventRelay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(ginzap.Ginzap(s.logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(s.logger, true))
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/orders", s.handleCreateOrder)
	router.GET("/orders", s.handleListOrders)
	router.GET("/orders/:id", s.handleGetOrder)
	router.DELETE("/orders/:id", s.handleCancelOrder)

	router.GET("/ws/orders", s.handleOrderFeed)

	return router
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var raw any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": []string{"Order must be an object!"},
		})
		return
	}
	order, err := s.orders.Create(c.Request.Context(), raw)
	if err != nil {
		var verr *orders.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": verr.Violations,
			})
			return
		}
		s.logger.Error("order creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "internal server error",
		})
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) handleListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, s.orders.List(c.Request.Context()))
}

func (s *Server) handleGetOrder(c *gin.Context) {
	id, ok := s.orderID(c)
	if !ok {
		return
	}
	order, err := s.orders.Get(c.Request.Context(), id)
	if err != nil {
		s.writeNotFound(c, fmt.Sprintf("No order with id: %d!", id))
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	id, ok := s.orderID(c)
	if !ok {
		return
	}
	if _, err := s.orders.Cancel(c.Request.Context(), id); err != nil {
		s.writeNotFound(c, fmt.Sprintf("No order with id: %d!", id))
		return
	}
	c.Status(http.StatusNoContent)
}

// orderID parses the id path parameter. A non-numeric or non-positive id is
// reported as not found, with a message distinct from the unknown-id case.
func (s *Server) orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeNotFound(c, "Order not found!")
		return 0, false
	}
	return id, true
}

func (s *Server) writeNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{
		"code":    http.StatusNotFound,
		"message": message,
	})
}
