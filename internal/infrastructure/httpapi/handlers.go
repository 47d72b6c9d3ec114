package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/approval"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

type handler struct {
	svc Services
}

// actor identifies the caller in the audit trail. There is no
// authentication, so the header is taken at face value.
func actor(c *gin.Context) string {
	if a := strings.TrimSpace(c.GetHeader("X-Actor")); a != "" {
		return a
	}
	return "api"
}

func routeOptions(c *gin.Context) ([]routing.RouteOption, bool) {
	raw := c.Query("timeToMarket")
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "timeToMarket must be an integer", []map[string]string{
			{"field": "timeToMarket", "issue": "invalid"},
		})
		return nil, false
	}
	return []routing.RouteOption{routing.WithTimeToMarket(n)}, true
}

func readSpec(c *gin.Context) (*intake.StructuredSpec, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "could not read request body", nil)
		return nil, false
	}
	spec, err := intake.DecodeJSON(body)
	if err != nil {
		respondErr(c, err)
		return nil, false
	}
	return spec, true
}

func (h *handler) route(c *gin.Context) {
	opts, ok := routeOptions(c)
	if !ok {
		return
	}
	spec, ok := readSpec(c)
	if !ok {
		return
	}
	res, err := h.svc.Routing.RouteSpec(spec, opts...)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) policy(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Policy.Policy())
}

// updatePolicy replaces the workspace policy. Omitted fields take their
// defaults, as they do in policy.yaml.
func (h *handler) updatePolicy(c *gin.Context) {
	cfg := domain.DefaultPolicyConfig()
	dec := json.NewDecoder(io.LimitReader(c.Request.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid policy: "+err.Error(), nil)
		return
	}
	if err := h.svc.Policy.Update(cfg, actor(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.Policy.Policy())
}

func (h *handler) listIntakes(c *gin.Context) {
	var status intake.Status
	if raw := c.Query("status"); raw != "" {
		s, err := intake.ParseStatus(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		status = s
	}
	list, err := h.svc.Intakes.ListIntakes(status)
	if err != nil {
		respondErr(c, err)
		return
	}
	if list == nil {
		list = []*intake.Intake{}
	}
	c.JSON(http.StatusOK, gin.H{"intakes": list})
}

type createIntakeRequest struct {
	ID            string `json:"id"`
	Title         string `json:"title" binding:"required"`
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	ValueStream   string `json:"value_stream"`
	Category      string `json:"category"`
	Priority      string `json:"priority"`
}

func (h *handler) createIntake(c *gin.Context) {
	var req createIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "title is required", []map[string]string{
			{"field": "title", "issue": "required"},
		})
		return
	}
	if req.RequesterID == "" {
		req.RequesterID = actor(c)
	}
	in, err := h.svc.Intakes.CreateIntake(application.CreateIntakeInput{
		ID:            req.ID,
		Title:         req.Title,
		RequesterID:   req.RequesterID,
		RequesterName: req.RequesterName,
		ValueStream:   req.ValueStream,
		Category:      req.Category,
		Priority:      req.Priority,
	})
	if err != nil {
		if errors.Is(err, application.ErrNotInitialized) {
			respondErr(c, err)
			return
		}
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	c.JSON(http.StatusCreated, in)
}

func (h *handler) getIntake(c *gin.Context) {
	in, err := h.svc.Intakes.GetIntake(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"intake":       in,
		"valid_events": in.Status.ValidEvents(),
	})
}

func (h *handler) saveSpec(c *gin.Context) {
	spec, ok := readSpec(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.svc.Routing.SaveSpec(id, spec, actor(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"intake_id": id, "spec_hash": spec.Hash()})
}

func (h *handler) routeIntake(c *gin.Context) {
	opts, ok := routeOptions(c)
	if !ok {
		return
	}
	rec, err := h.svc.Routing.RouteIntake(c.Request.Context(), c.Param("id"), actor(c), opts...)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handler) getRouting(c *gin.Context) {
	status, err := h.svc.Routing.GetRouting(c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *handler) routingHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	history, err := h.svc.Routing.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondErr(c, err)
		return
	}
	if history == nil {
		history = []*domain.RoutingRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

type transitionRequest struct {
	Event string `json:"event" binding:"required"`
}

func (h *handler) transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "event is required", []map[string]string{
			{"field": "event", "issue": "required"},
		})
		return
	}
	in, err := h.svc.Intakes.Transition(c.Param("id"), req.Event, actor(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}

type decisionRequest struct {
	ApproverID   string               `json:"approver_id"`
	ApproverName string               `json:"approver_name"`
	Role         approval.Role        `json:"role" binding:"required"`
	Decision     approval.Decision    `json:"decision" binding:"required"`
	Comments     string               `json:"comments"`
	KillDate     *time.Time           `json:"kill_date"`
	Guardrails   *approval.Guardrails `json:"guardrails"`
}

func (h *handler) recordDecision(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "role and decision are required", nil)
		return
	}
	if !req.Decision.IsValid() {
		respondError(c, http.StatusBadRequest, "validation_error", "unknown decision", []map[string]string{
			{"field": "decision", "issue": "invalid"},
		})
		return
	}
	if req.ApproverID == "" {
		req.ApproverID = actor(c)
	}
	a, err := h.svc.Intakes.RecordDecision(c.Param("id"), application.DecisionInput{
		ApproverID:   req.ApproverID,
		ApproverName: req.ApproverName,
		Role:         req.Role,
		Decision:     req.Decision,
		Comments:     req.Comments,
		KillDate:     req.KillDate,
		Guardrails:   req.Guardrails,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *handler) queue(c *gin.Context) {
	items, err := h.svc.Intakes.Queue()
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
