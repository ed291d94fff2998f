package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"expensedash/internal/analytics"
	"expensedash/internal/core"
	"expensedash/internal/filter"
	applog "expensedash/internal/log"
	"expensedash/internal/services"
)

type (
	expensesResponse struct {
		Filter   filter.Spec    `json:"filter"`
		Count    int            `json:"count"`
		Expenses []core.Expense `json:"expenses"`
	}

	createdResponse struct {
		ID      int64        `json:"id"`
		Expense core.Expense `json:"expense"`
	}

	dashboardResponse struct {
		Filter  filter.Spec      `json:"filter"`
		Filters filter.Domain    `json:"filters"`
		KPIs    core.KPIs        `json:"kpis"`
		Charts  analytics.Charts `json:"charts"`
	}

	catalogInfo struct {
		ID      analytics.Catalog `json:"id"`
		Title   string            `json:"title"`
		Queries []analytics.Query `json:"queries"`
	}

	catalogResponse struct {
		ID      analytics.Catalog  `json:"id"`
		Title   string             `json:"title"`
		Results []analytics.Result `json:"results"`
	}
)

func handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleReady(c *gin.Context) {
	if s.ready != nil {
		if err := s.ready(c.Request.Context()); err != nil {
			applog.FromContext(c.Request.Context()).WarnContext(c.Request.Context(), "Readiness check failed",
				applog.FieldError, err.Error())
			c.String(http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	c.String(http.StatusOK, "ready")
}

// session opens a dashboard session for the filter in the query string.
func (s *Server) session(c *gin.Context, op string) (*services.Session, bool) {
	sess, err := s.dashboard.Open(c.Request.Context(), ParseFilterSpec(c.Request.URL.Query()))
	if err != nil {
		respondError(c, op, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleFilters(c *gin.Context) {
	sess, ok := s.session(c, applog.OpLoad)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Filters())
}

func (s *Server) handleListExpenses(c *gin.Context) {
	sess, ok := s.session(c, applog.OpList)
	if !ok {
		return
	}
	records := sess.Records()
	if records == nil {
		records = []core.Expense{}
	}
	c.JSON(http.StatusOK, expensesResponse{
		Filter:   sess.Spec(),
		Count:    len(records),
		Expenses: records,
	})
}

func (s *Server) handleCreateExpense(c *gin.Context) {
	p := NewRequestBodyParser(c.Request)
	if err := p.Parse(); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			respondError(c, applog.OpParse, err)
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return
	}

	e, err := s.expenses.Record(c.Request.Context(), p.ExpenseInput())
	if err != nil {
		respondError(c, applog.OpRecord, err)
		return
	}
	c.JSON(http.StatusCreated, createdResponse{ID: e.ID, Expense: e})
}

func (s *Server) handleKPIs(c *gin.Context) {
	sess, ok := s.session(c, applog.OpLoad)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.KPIs())
}

func (s *Server) handleCharts(c *gin.Context) {
	sess, ok := s.session(c, applog.OpLoad)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Charts())
}

// handleDashboard returns everything the dashboard header and charts need in
// one round trip.
func (s *Server) handleDashboard(c *gin.Context) {
	sess, ok := s.session(c, applog.OpLoad)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dashboardResponse{
		Filter:  sess.Spec(),
		Filters: sess.Filters(),
		KPIs:    sess.KPIs(),
		Charts:  sess.Charts(),
	})
}

func handleCatalogs(c *gin.Context) {
	var out []catalogInfo
	for _, cat := range analytics.Catalogs() {
		qs, _ := analytics.Queries(cat)
		out = append(out, catalogInfo{ID: cat, Title: cat.Title(), Queries: qs})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleRunCatalog(c *gin.Context) {
	cat, err := analytics.ParseCatalog(c.Param("catalog"))
	if err != nil {
		respondError(c, applog.OpQuery, err)
		return
	}
	sess, ok := s.session(c, applog.OpQuery)
	if !ok {
		return
	}
	results, err := sess.Catalog(c.Request.Context(), cat)
	if err != nil {
		respondError(c, applog.OpQuery, err)
		return
	}
	c.JSON(http.StatusOK, catalogResponse{ID: cat, Title: cat.Title(), Results: results})
}

func (s *Server) handleRunQuery(c *gin.Context) {
	cat, err := analytics.ParseCatalog(c.Param("catalog"))
	if err != nil {
		respondError(c, applog.OpQuery, err)
		return
	}
	id, err := ParseQueryID(c.Param("id"))
	if err != nil {
		respondError(c, applog.OpQuery, err)
		return
	}
	q, err := analytics.Lookup(cat, id)
	if err != nil {
		respondError(c, applog.OpQuery, err)
		return
	}
	sess, ok := s.session(c, applog.OpQuery)
	if !ok {
		return
	}
	table, err := sess.Query(cat, id)
	if err != nil {
		respondError(c, applog.OpQuery, err)
		return
	}
	c.JSON(http.StatusOK, analytics.Result{Catalog: cat, ID: q.ID, Label: q.Label, Table: table})
}
