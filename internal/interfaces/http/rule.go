package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"mietwerk/internal/domain/banking"
	"mietwerk/internal/domain/matchrule"
	"mietwerk/internal/shared/middleware"
)

type RuleHandler struct {
	matchService *matchrule.Service
}

func NewRuleHandler(matchService *matchrule.Service) *RuleHandler {
	return &RuleHandler{matchService: matchService}
}

// CreateRuleRequest is the request body for creating a rule
type CreateRuleRequest struct {
	Name       string                `json:"name"`
	Conditions []matchrule.Condition `json:"conditions"`
	Target     TargetRequest         `json:"target"`
}

// TargetRequest is the assignment template part of a rule
type TargetRequest struct {
	TenantID        *string `json:"tenantId,omitempty"`
	LeaseID         *string `json:"leaseId,omitempty"`
	TransactionType *string `json:"transactionType,omitempty"`
	BuildingID      *string `json:"buildingId,omitempty"`
}

func (t TargetRequest) toAssignment() (banking.Assignment, error) {
	var txType *banking.TransactionType
	if t.TransactionType != nil {
		typ := banking.TransactionType(*t.TransactionType)
		if !typ.Valid() {
			return banking.Assignment{}, banking.ErrInvalidType
		}
		txType = &typ
	}
	return banking.Assignment{
		TenantID:   t.TenantID,
		LeaseID:    t.LeaseID,
		Type:       txType,
		BuildingID: t.BuildingID,
	}, nil
}

// HandleRules handles POST/GET /api/rules/
func (h *RuleHandler) HandleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreateRule(w, r)
	case http.MethodGet:
		h.handleListRules(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleRuleByID handles GET/DELETE /api/rules/{id}
func (h *RuleHandler) HandleRuleByID(w http.ResponseWriter, r *http.Request) {
	orgID, ok := middleware.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ruleID := r.PathValue("id")
	if ruleID == "" {
		ruleID = strings.TrimPrefix(r.URL.Path, "/api/rules/")
	}
	if ruleID == "" {
		http.Error(w, "Invalid rule ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetRule(w, r, orgID, ruleID)
	case http.MethodDelete:
		h.handleDeleteRule(w, r, orgID, ruleID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RuleHandler) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	orgID, ok := middleware.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding create rule request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	target, err := req.Target.toAssignment()
	if err != nil {
		http.Error(w, "Unknown transaction type", http.StatusBadRequest)
		return
	}

	params := matchrule.CreateRuleParams{
		OrgID:      orgID,
		Name:       req.Name,
		Conditions: req.Conditions,
		Target:     target,
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rule, err := h.matchService.CreateRule(r.Context(), params)
	if err != nil {
		log.Printf("Error creating rule for org %d: %v", orgID, err)
		http.Error(w, "Failed to create rule", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rule)
}

func (h *RuleHandler) handleListRules(w http.ResponseWriter, r *http.Request) {
	orgID, ok := middleware.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rules, err := h.matchService.ListRules(r.Context(), orgID)
	if err != nil {
		log.Printf("Error listing rules for org %d: %v", orgID, err)
		http.Error(w, "Failed to list rules", http.StatusInternalServerError)
		return
	}

	if rules == nil {
		rules = []*matchrule.Rule{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rules)
}

func (h *RuleHandler) handleGetRule(w http.ResponseWriter, r *http.Request, orgID int64, ruleID string) {
	rule, err := h.matchService.GetRule(r.Context(), orgID, ruleID)
	if err != nil {
		h.writeRuleFailure(w, orgID, ruleID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rule)
}

func (h *RuleHandler) handleDeleteRule(w http.ResponseWriter, r *http.Request, orgID int64, ruleID string) {
	if err := h.matchService.DeleteRule(r.Context(), orgID, ruleID); err != nil {
		h.writeRuleFailure(w, orgID, ruleID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RuleHandler) writeRuleFailure(w http.ResponseWriter, orgID int64, ruleID string, err error) {
	switch {
	case errors.Is(err, matchrule.ErrRuleNotFound):
		http.Error(w, "Rule not found", http.StatusNotFound)
	case errors.Is(err, matchrule.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		log.Printf("Error accessing rule %s for org %d: %v", ruleID, orgID, err)
		http.Error(w, "Failed to access rule", http.StatusInternalServerError)
	}
}
