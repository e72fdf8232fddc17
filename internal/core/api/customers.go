package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/solatis/bulkmsg/internal/filter"
	"github.com/solatis/bulkmsg/internal/types"
)

type customersPage struct {
	Customers []types.Customer `json:"customers"`
	Count     int              `json:"count"`
	Total     int              `json:"total"`
}

// ListCustomers returns the customer snapshot, narrowed by ?q= when given.
func (s *Service) ListCustomers(c *gin.Context) {
	all := s.customers.All()
	found := filter.Apply(all, nil, filter.Query{Search: c.Query("q")})
	Success(c, http.StatusOK, "customers retrieved", customersPage{Customers: found, Count: len(found), Total: len(all)})
}

// GetCustomer returns one customer.
func (s *Service) GetCustomer(c *gin.Context) {
	cust, ok := s.customers.Get(c.Param("id"))
	if !ok {
		NotFound(c, "customer not found", nil)
		return
	}
	Success(c, http.StatusOK, "customer retrieved", cust)
}

// ReloadCustomers refetches the feed. A failed fetch leaves the store empty.
func (s *Service) ReloadCustomers(c *gin.Context) {
	if s.source == nil {
		Error(c, http.StatusServiceUnavailable, "no customer feed configured", nil)
		return
	}
	loaded, err := s.customers.Load(c.Request.Context(), s.source)
	if err != nil {
		Fail(c, "failed to reload customers", err)
		return
	}
	s.logger.Info("customers reloaded", zap.Int("count", len(loaded)), zap.String("source", s.source.Name()))
	Success(c, http.StatusOK, fmt.Sprintf("loaded %d customers", len(loaded)), gin.H{"count": len(loaded)})
}

// FilterCatalog returns the filter definitions, optionally for one ?category=.
func (s *Service) FilterCatalog(c *gin.Context) {
	cat := filter.Category(c.Query("category"))
	if cat != "" && !knownCategory(cat) {
		ValidationError(c, "unknown category", fmt.Errorf("%q", cat))
		return
	}
	Success(c, http.StatusOK, "filters retrieved", gin.H{
		"categories": filter.Categories,
		"filters":    filter.Catalog(cat),
	})
}

func knownCategory(cat filter.Category) bool {
	for _, c := range filter.Categories {
		if c == cat {
			return true
		}
	}
	return false
}
