package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/solatis/bulkmsg/internal/session"
	"github.com/solatis/bulkmsg/internal/types"
)

type problemView struct {
	NodeID types.NodeID `json:"nodeId"`
	Field  string       `json:"field"`
	Error  string       `json:"error"`
}

type sessionView struct {
	session.State
	Problems []problemView `json:"problems,omitempty"`
}

func viewOf(sess *session.Session) sessionView {
	v := sessionView{State: sess.State()}
	for _, p := range sess.Problems() {
		v.Problems = append(v.Problems, problemView{NodeID: p.NodeID, Field: p.Field, Error: p.Err.Error()})
	}
	return v
}

// session resolves :id or writes the error response.
func (s *Service) session(c *gin.Context) (*session.Session, bool) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		Fail(c, "session not found", err)
		return nil, false
	}
	return sess, true
}

// bind decodes the JSON body into req or writes a 400.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		ValidationError(c, "invalid request", err)
		return false
	}
	return true
}

// CreateSession starts a selection session.
func (s *Service) CreateSession(c *gin.Context) {
	sess := s.sessions.Create()
	Success(c, http.StatusCreated, "session created", viewOf(sess))
}

// GetSession returns the session state and any unevaluable conditions.
func (s *Service) GetSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	Success(c, http.StatusOK, "session retrieved", viewOf(sess))
}

// DeleteSession ends a session.
func (s *Service) DeleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Param("id")); err != nil {
		Fail(c, "session not found", err)
		return
	}
	Success(c, http.StatusOK, "session deleted", nil)
}

// AddFilter appends a condition.
func (s *Service) AddFilter(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req session.FilterInput
	if !bind(c, &req) {
		return
	}
	id, err := sess.AddFilter(req)
	if err != nil {
		Fail(c, "failed to add filter", err)
		return
	}
	Success(c, http.StatusCreated, "filter added", gin.H{"id": id, "session": viewOf(sess)})
}

type groupRequest struct {
	Parent          types.NodeID          `json:"parent"`
	LogicalOperator types.LogicalOperator `json:"logicalOperator"`
}

// AddGroup appends an empty nested group.
func (s *Service) AddGroup(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req groupRequest
	if !bind(c, &req) {
		return
	}
	if req.LogicalOperator == "" {
		req.LogicalOperator = types.And
	}
	id, err := sess.AddGroup(req.Parent, req.LogicalOperator)
	if err != nil {
		Fail(c, "failed to add group", err)
		return
	}
	Success(c, http.StatusCreated, "group added", gin.H{"id": id, "session": viewOf(sess)})
}

// RemoveFilter deletes a node and its subtree.
func (s *Service) RemoveFilter(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if err := sess.RemoveFilter(types.NodeID(c.Param("node"))); err != nil {
		Fail(c, "failed to remove filter", err)
		return
	}
	Success(c, http.StatusOK, "filter removed", viewOf(sess))
}

// ClearFilters empties the filter tree.
func (s *Service) ClearFilters(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	sess.ClearFilters()
	Success(c, http.StatusOK, "filters cleared", viewOf(sess))
}

// LoadFilter replaces the whole tree.
func (s *Service) LoadFilter(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var node types.Node
	if !bind(c, &node) {
		return
	}
	if err := sess.LoadFilter(node); err != nil {
		Fail(c, "failed to load filter", err)
		return
	}
	Success(c, http.StatusOK, "filter loaded", viewOf(sess))
}

type operatorRequest struct {
	Operator types.Operator `json:"operator" binding:"required"`
}

// UpdateFilterOperator changes a condition's operator.
func (s *Service) UpdateFilterOperator(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req operatorRequest
	if !bind(c, &req) {
		return
	}
	if err := sess.UpdateFilterOperator(types.NodeID(c.Param("node")), req.Operator); err != nil {
		Fail(c, "failed to update operator", err)
		return
	}
	Success(c, http.StatusOK, "operator updated", viewOf(sess))
}

type valueRequest struct {
	Value       types.Value  `json:"value"`
	SecondValue *types.Value `json:"secondValue"`
}

// UpdateFilterValue replaces a condition's operands.
func (s *Service) UpdateFilterValue(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req valueRequest
	if !bind(c, &req) {
		return
	}
	if err := sess.UpdateFilterValue(types.NodeID(c.Param("node")), req.Value, req.SecondValue); err != nil {
		Fail(c, "failed to update value", err)
		return
	}
	Success(c, http.StatusOK, "value updated", viewOf(sess))
}

type logicalRequest struct {
	LogicalOperator types.LogicalOperator `json:"logicalOperator" binding:"required"`
}

// SetRootOperator switches the root group between AND and OR.
func (s *Service) SetRootOperator(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req logicalRequest
	if !bind(c, &req) {
		return
	}
	if err := sess.SetRootOperator(req.LogicalOperator); err != nil {
		Fail(c, "failed to set operator", err)
		return
	}
	Success(c, http.StatusOK, "operator updated", viewOf(sess))
}

// SetGroupOperator switches a nested group between AND and OR.
func (s *Service) SetGroupOperator(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req logicalRequest
	if !bind(c, &req) {
		return
	}
	if err := sess.SetGroupOperator(types.NodeID(c.Param("node")), req.LogicalOperator); err != nil {
		Fail(c, "failed to set operator", err)
		return
	}
	Success(c, http.StatusOK, "operator updated", viewOf(sess))
}

// SetSearch sets the search box text.
func (s *Service) SetSearch(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		Search string `json:"search"`
	}
	if !bind(c, &req) {
		return
	}
	sess.SetSearch(req.Search)
	Success(c, http.StatusOK, "search updated", viewOf(sess))
}

// SetView toggles the selected-only view.
func (s *Service) SetView(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		ShowSelectedOnly bool `json:"showSelectedOnly"`
	}
	if !bind(c, &req) {
		return
	}
	sess.SetShowSelectedOnly(req.ShowSelectedOnly)
	Success(c, http.StatusOK, "view updated", viewOf(sess))
}

// SetSelection replaces the selection; unknown ids are dropped.
func (s *Service) SetSelection(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		IDs []string `json:"ids"`
	}
	if !bind(c, &req) {
		return
	}
	n := sess.SetSelection(req.IDs)
	Success(c, http.StatusOK, "selection updated", gin.H{"selected": n, "session": viewOf(sess)})
}

// ToggleSelected selects or deselects one customer.
func (s *Service) ToggleSelected(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req struct {
		Selected bool `json:"selected"`
	}
	if !bind(c, &req) {
		return
	}
	if err := sess.ToggleSelected(c.Param("customer"), req.Selected); err != nil {
		Fail(c, "failed to update selection", err)
		return
	}
	Success(c, http.StatusOK, "selection updated", viewOf(sess))
}

// SelectResults selects every customer in the current results.
func (s *Service) SelectResults(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	n := sess.SelectResults()
	Success(c, http.StatusOK, "results selected", gin.H{"selected": n})
}

// SelectSavedList replaces the selection with a saved list's members.
func (s *Service) SelectSavedList(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	id, ok := listID(c, "list")
	if !ok {
		return
	}
	l, n, err := sess.SelectSavedList(id)
	if err != nil {
		Fail(c, "failed to select list", err)
		return
	}
	Success(c, http.StatusOK, "list selected", gin.H{"list": l, "selected": n})
}

// ApplyFilters returns the customers matching search, filter and view.
func (s *Service) ApplyFilters(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	found := sess.ApplyFilters()
	Success(c, http.StatusOK, "filters applied", customersPage{Customers: found, Count: len(found), Total: len(s.customers.All())})
}

// SelectRecipients returns the selected customers.
func (s *Service) SelectRecipients(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	rec := sess.SelectRecipients()
	Success(c, http.StatusOK, "recipients retrieved", gin.H{"recipients": rec, "count": len(rec)})
}

type saveListRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// FromResults saves the filtered results and the filter instead of
	// the selection.
	FromResults bool `json:"fromResults"`
}

// SaveList stores the selection (or the current results) as a Custom list.
func (s *Service) SaveList(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req saveListRequest
	if !bind(c, &req) {
		return
	}
	save := sess.SaveList
	if req.FromResults {
		save = sess.SaveFilteredList
	}
	l, err := save(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		Fail(c, "failed to save list", err)
		return
	}
	Success(c, http.StatusCreated, "list saved", l)
}

func listID(c *gin.Context, param string) (int, bool) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil {
		ValidationError(c, "invalid list ID", err)
		return 0, false
	}
	return id, true
}
