// Package api exposes the segment engine over HTTP (gin, /api/v1) and gRPC
// (bulkmsg.segments.v1.Segments).
package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/solatis/bulkmsg/internal/customers"
	"github.com/solatis/bulkmsg/internal/lists"
	"github.com/solatis/bulkmsg/internal/messaging"
	"github.com/solatis/bulkmsg/internal/session"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Deps are the components the API delegates to. Source may be nil, in
// which case reload is rejected.
type Deps struct {
	Customers      *customers.Store
	Source         customers.Source
	Lists          *lists.Store
	Sessions       *session.Registry
	Composer       *messaging.Composer
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// Service is a thin orchestration layer over the domain packages.
type Service struct {
	customers *customers.Store
	source    customers.Source
	lists     *lists.Store
	sessions  *session.Registry
	composer  *messaging.Composer
	timeout   time.Duration
	logger    *zap.Logger
}

// NewService validates deps and returns a service.
func NewService(d Deps) (*Service, error) {
	if d.Customers == nil {
		return nil, fmt.Errorf("customers cannot be nil")
	}
	if d.Lists == nil {
		return nil, fmt.Errorf("lists cannot be nil")
	}
	if d.Sessions == nil {
		return nil, fmt.Errorf("sessions cannot be nil")
	}
	if d.Composer == nil {
		return nil, fmt.Errorf("composer cannot be nil")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		customers: d.Customers,
		source:    d.Source,
		lists:     d.Lists,
		sessions:  d.Sessions,
		composer:  d.Composer,
		timeout:   d.RequestTimeout,
		logger:    logger,
	}, nil
}

// Router builds the gin engine with every route registered.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(RecoveryMiddleware(s.logger), LoggerMiddleware(s.logger), TimeoutMiddleware(s.timeout))
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes mounts the API under /api/v1.
func (s *Service) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": Version, "customers": s.customers.Len()})
	})

	cust := api.Group("/customers")
	{
		cust.GET("", s.ListCustomers)
		cust.GET("/:id", s.GetCustomer)
		cust.POST("/reload", s.ReloadCustomers)
	}

	api.GET("/filters", s.FilterCatalog)

	sess := api.Group("/sessions")
	{
		sess.POST("", s.CreateSession)
		sess.GET("/:id", s.GetSession)
		sess.DELETE("/:id", s.DeleteSession)

		sess.POST("/:id/filters", s.AddFilter)
		sess.DELETE("/:id/filters", s.ClearFilters)
		sess.PUT("/:id/filters", s.LoadFilter)
		sess.POST("/:id/groups", s.AddGroup)
		sess.DELETE("/:id/filters/:node", s.RemoveFilter)
		sess.PUT("/:id/filters/:node/operator", s.UpdateFilterOperator)
		sess.PUT("/:id/filters/:node/value", s.UpdateFilterValue)
		sess.PUT("/:id/filters/:node/logical", s.SetGroupOperator)
		sess.PUT("/:id/operator", s.SetRootOperator)

		sess.PUT("/:id/search", s.SetSearch)
		sess.PUT("/:id/view", s.SetView)
		sess.PUT("/:id/selection", s.SetSelection)
		sess.PUT("/:id/selection/:customer", s.ToggleSelected)
		sess.POST("/:id/selection/results", s.SelectResults)
		sess.POST("/:id/selection/lists/:list", s.SelectSavedList)

		sess.GET("/:id/results", s.ApplyFilters)
		sess.GET("/:id/recipients", s.SelectRecipients)
		sess.POST("/:id/lists", s.SaveList)
	}

	lst := api.Group("/lists")
	{
		lst.GET("", s.ListLists)
		lst.GET("/:list", s.GetList)
		lst.GET("/:list/members", s.ListMembers)
		lst.GET("/:list/export", s.ExportList)
		lst.DELETE("/:list", s.DeleteList)
	}

	msg := api.Group("/messages")
	{
		msg.GET("", s.MessageHistory)
		msg.GET("/templates", s.MessageTemplates)
		msg.POST("/send", s.SendMessage)
		msg.GET("/drafts", s.ListDrafts)
		msg.POST("/drafts", s.SaveDraft)
		msg.POST("/drafts/:msg/send", s.SendDraft)
		msg.DELETE("/drafts/:msg", s.DeleteDraft)
		msg.GET("/:msg", s.GetMessage)
	}
}
