package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pders01/reflexion/internal/backend"
	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/progression"
	"github.com/pders01/reflexion/internal/ranking"
)

// Info proxies the backend health check. Auth is optional.
func (s *Server) Info(c *gin.Context) {
	data, err := s.backend.Info(c.Request.Context(), credentials(c))
	if apiErr, ok := backend.AsAPIError(err); ok {
		c.JSON(apiErr.StatusCode, gin.H{"error": "Backend error", "details": string(apiErr.Body)})
		return
	}
	if err != nil {
		s.backendError(c, "info", err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// Projects lists the caller's knowledge graph projects
func (s *Server) Projects(c *gin.Context) {
	data, err := s.backend.Projects(c.Request.Context(), credentials(c))
	if apiErr, ok := backend.AsAPIError(err); ok {
		c.JSON(apiErr.StatusCode, gin.H{"error": "Backend error"})
		return
	}
	if err != nil {
		s.backendError(c, "projects", err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// Apply validates and forwards a decision to the backend
func (s *Server) Apply(c *gin.Context) {
	var req models.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": applyBindError(err)})
		return
	}

	data, err := s.backend.Apply(c.Request.Context(), credentials(c), req)
	if err != nil {
		s.backendError(c, "apply", err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func applyBindError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field() + " is required"
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "payload" {
		return "payload is required"
	}
	return "Invalid JSON body"
}

// Decisions lists the pending decisions of a thread
func (s *Server) Decisions(c *gin.Context) {
	items, err := s.backend.PendingDecisions(c.Request.Context(), credentials(c), c.Query("thread_id"))
	if err != nil {
		s.backendError(c, "decisions", err)
		return
	}
	for _, item := range items {
		if item.PreviewError != "" {
			s.logger.Warn("undecodable preview",
				zap.String("decision", item.ID),
				zap.String("error", item.PreviewError))
		}
	}
	c.JSON(http.StatusOK, items)
}

// DiffRequest is the body of POST /api/progression/diff
type DiffRequest struct {
	Left     models.Snapshot      `json:"left"`
	Right    models.Snapshot      `json:"right"`
	Metadata models.DiffLabels    `json:"metadata"`
	Progress progression.Progress `json:"progress"`
}

// ProgressionDiff compares two snapshots
func (s *Server) ProgressionDiff(c *gin.Context) {
	var req DiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body", "details": err.Error()})
		return
	}

	diff, err := progression.BuildProgressionDiff(req.Left, req.Right, req.Metadata, req.Progress)
	if err != nil {
		if !validationError(c, err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, diff)
}

// HydrationRequest is the body of POST /api/hydration/view
type HydrationRequest struct {
	Start       models.Snapshot `json:"start"`
	Current     models.Snapshot `json:"current"`
	Target      models.Snapshot `json:"target"`
	Aggregation string          `json:"aggregation,omitempty"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
}

// HydrationView builds a hydration view from start, current and target
func (s *Server) HydrationView(c *gin.Context) {
	var req HydrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body", "details": err.Error()})
		return
	}

	agg := s.aggregation
	if req.Aggregation != "" {
		parsed, err := progression.ParseAggregation(req.Aggregation)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		agg = parsed
	}

	view, err := progression.BuildHydrationView(req.Start, req.Current, req.Target, progression.HydrationOptions{
		Aggregation: agg,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		if !validationError(c, err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, view)
}

// BriefDecisionRequest is the body of POST /api/brief/decision
type BriefDecisionRequest struct {
	Brief         models.ConceptBriefDiffView `json:"brief"`
	SelectedIndex *int                        `json:"selected_index,omitempty"`
	Reject        bool                        `json:"reject,omitempty"`
}

// BriefDecisionResponse carries the apply payload for a concept brief choice
type BriefDecisionResponse struct {
	Verdict ranking.Verdict `json:"verdict"`
	Index   *int            `json:"selected_option_index,omitempty"`
	Payload map[string]any  `json:"payload"`
}

// BriefDecision turns a selection over a concept brief into an apply payload
func (s *Server) BriefDecision(c *gin.Context) {
	var req BriefDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body", "details": err.Error()})
		return
	}

	model, err := ranking.New(req.Brief)
	if err != nil {
		validationError(c, err)
		return
	}
	if req.SelectedIndex != nil {
		if err := model.Select(*req.SelectedIndex); err != nil {
			validationError(c, err)
			return
		}
	}

	decision := model.Decide()
	if req.Reject {
		decision = model.Reject()
	}

	resp := BriefDecisionResponse{Verdict: decision.Verdict, Payload: decision.Payload()}
	if decision.Approved() {
		idx := decision.Index
		resp.Index = &idx
	}
	c.JSON(http.StatusOK, resp)
}
