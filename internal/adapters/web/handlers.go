package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/corey/sahayak/internal/adapters/socket"
	"github.com/corey/sahayak/internal/ports"
	"github.com/gin-gonic/gin"
)

// MaxLimit caps the limit query parameter.
const MaxLimit = 200

// APIError is the error body of every non-2xx response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps APIError as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// listQuery holds the filter parameters shared by search and listing.
type listQuery struct {
	Q         string `form:"q"`
	Category  string `form:"category"`
	State     string `form:"state"`
	StateOnly bool   `form:"state_only"`
	AllStates bool   `form:"all_states"`
	Popular   bool   `form:"popular"`
	Limit     int    `form:"limit"`
	Lang      string `form:"lang"`
}

func (q listQuery) options() ports.SearchOptions {
	return ports.SearchOptions{
		Category:     strings.ToLower(strings.TrimSpace(q.Category)),
		State:        strings.ToLower(strings.TrimSpace(q.State)),
		StateOnly:    q.StateOnly,
		ExcludeState: q.AllStates,
		Popular:      q.Popular,
		Limit:        q.Limit,
	}
}

func bindList(c *gin.Context) (listQuery, bool) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "bad_query", err)
		return q, false
	}
	if q.Limit < 0 || q.Limit > MaxLimit {
		respondError(c, http.StatusBadRequest, "bad_query", fmt.Errorf("limit must be between 0 and %d", MaxLimit))
		return q, false
	}
	return q, true
}

func (s *Server) lang(c *gin.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if strings.HasPrefix(c.GetHeader("Accept-Language"), "hi") {
		return "hi"
	}
	if s.opts.Lang != "" {
		return s.opts.Lang
	}
	return "en"
}

func (s *Server) available(c *gin.Context) bool {
	if s.queries == nil {
		respondError(c, http.StatusServiceUnavailable, "no_corpus", ports.ErrNoCorpus)
		return false
	}
	return true
}

func (s *Server) handleIndex(c *gin.Context) {
	data, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "static", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

func (s *Server) handleHealth(c *gin.Context) {
	if !s.available(c) {
		return
	}
	c.JSON(http.StatusOK, socket.HealthResult{
		Status: "ok",
		Corpus: s.queries.Corpus(),
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	if !s.available(c) {
		return
	}
	q, ok := bindList(c)
	if !ok {
		return
	}
	if strings.TrimSpace(q.Q) == "" {
		respondError(c, http.StatusBadRequest, "bad_query", errors.New("q is required"))
		return
	}

	start := time.Now()
	result := s.queries.Search(q.Q, q.options())
	hits := []ports.Hit{}
	if result != nil && result.Hits != nil {
		hits = result.Hits
	}
	c.JSON(http.StatusOK, socket.SearchResult{
		Hits:    hits,
		Count:   len(hits),
		Elapsed: time.Since(start).String(),
	})
}

func (s *Server) handleSchemes(c *gin.Context) {
	if !s.available(c) {
		return
	}
	q, ok := bindList(c)
	if !ok {
		return
	}
	schemes := s.queries.Schemes(q.options())
	if schemes == nil {
		schemes = []*ports.SchemeRecord{}
	}
	c.JSON(http.StatusOK, socket.SchemesResult{Schemes: schemes, Count: len(schemes)})
}

func (s *Server) handleScheme(c *gin.Context) {
	if !s.available(c) {
		return
	}
	id := c.Param("id")
	sch, ok := s.queries.Scheme(id)
	if !ok {
		respondError(c, http.StatusNotFound, "not_found", fmt.Errorf("scheme not found: %s", id))
		return
	}
	c.JSON(http.StatusOK, sch)
}

func (s *Server) handleCategories(c *gin.Context) {
	if !s.available(c) {
		return
	}
	cats := s.queries.Categories(s.lang(c, c.Query("lang")))
	if cats == nil {
		cats = []socket.CategoryInfo{}
	}
	c.JSON(http.StatusOK, socket.CategoriesResult{Categories: cats, Count: len(cats)})
}

func (s *Server) handleStates(c *gin.Context) {
	if !s.available(c) {
		return
	}
	states := s.queries.States(s.lang(c, c.Query("lang")))
	if states == nil {
		states = []socket.StateInfo{}
	}
	c.JSON(http.StatusOK, socket.StatesResult{States: states, Count: len(states)})
}

func (s *Server) handleEligible(c *gin.Context) {
	if !s.available(c) {
		return
	}
	var params socket.EligibleParams
	if err := c.ShouldBindJSON(&params); err != nil {
		respondError(c, http.StatusBadRequest, "bad_body", err)
		return
	}
	result, err := s.queries.Eligible(params)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidProfile) {
			respondError(c, http.StatusUnprocessableEntity, "invalid_profile", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "eligible", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAsk(c *gin.Context) {
	if !s.available(c) {
		return
	}
	var params socket.AskParams
	if err := c.ShouldBindJSON(&params); err != nil {
		respondError(c, http.StatusBadRequest, "bad_body", err)
		return
	}
	if strings.TrimSpace(params.Query) == "" {
		respondError(c, http.StatusBadRequest, "bad_body", errors.New("query is required"))
		return
	}
	params.Lang = s.lang(c, params.Lang)
	c.JSON(http.StatusOK, s.queries.Ask(params))
}
