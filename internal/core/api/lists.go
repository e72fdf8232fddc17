package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solatis/bulkmsg/internal/lists"
)

// ListLists returns saved lists, narrowed by ?q= when given.
func (s *Service) ListLists(c *gin.Context) {
	found := s.lists.Search(c.Query("q"))
	Success(c, http.StatusOK, "lists retrieved", gin.H{"lists": found, "count": len(found)})
}

// GetList returns one saved list.
func (s *Service) GetList(c *gin.Context) {
	id, ok := listID(c, "list")
	if !ok {
		return
	}
	l, err := s.lists.Get(id)
	if err != nil {
		Fail(c, "list not found", err)
		return
	}
	Success(c, http.StatusOK, "list retrieved", l)
}

// ListMembers resolves a list against the current customers.
func (s *Service) ListMembers(c *gin.Context) {
	id, ok := listID(c, "list")
	if !ok {
		return
	}
	l, err := s.lists.Get(id)
	if err != nil {
		Fail(c, "list not found", err)
		return
	}
	members := lists.Members(l, s.customers.All())
	Success(c, http.StatusOK, "members retrieved", customersPage{Customers: members, Count: len(members), Total: s.customers.Len()})
}

// ExportList downloads a list's members as a workbook.
func (s *Service) ExportList(c *gin.Context) {
	id, ok := listID(c, "list")
	if !ok {
		return
	}
	l, err := s.lists.Get(id)
	if err != nil {
		Fail(c, "list not found", err)
		return
	}
	data, err := lists.Export(l, lists.Members(l, s.customers.All()))
	if err != nil {
		Fail(c, "failed to export list", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=customer-list-%d.xlsx", l.ID))
	c.Data(http.StatusOK, lists.ExportContentType, data)
}

// DeleteList removes a Custom list. System lists are refused.
func (s *Service) DeleteList(c *gin.Context) {
	id, ok := listID(c, "list")
	if !ok {
		return
	}
	if err := s.lists.Delete(c.Request.Context(), id); err != nil {
		Fail(c, "failed to delete list", err)
		return
	}
	Success(c, http.StatusOK, "list deleted", nil)
}
