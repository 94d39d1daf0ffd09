package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mietwerk/internal/domain/banking"
	"mietwerk/internal/domain/matchrule"
	"mietwerk/internal/shared/middleware"
)

type MatchHandler struct {
	matchService *matchrule.Service
}

func NewMatchHandler(matchService *matchrule.Service) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// RuleMatchRequest is the request body for previewing or applying a rule
type RuleMatchRequest struct {
	RuleID         string   `json:"ruleId"`
	Preview        bool     `json:"preview"`
	TransactionIDs []string `json:"transactionIds,omitempty"`
}

// RuleMatchPreviewResponse lists the transactions a rule would claim
type RuleMatchPreviewResponse struct {
	Success bool                   `json:"success"`
	Matches []*banking.Transaction `json:"matches"`
}

// RuleMatchApplyResponse reports a retroactive rule application
type RuleMatchApplyResponse struct {
	Success bool `json:"success"`
	Applied int  `json:"applied"`
	Skipped int  `json:"skipped"`
	Failed  int  `json:"failed"`
}

// BulkMatchRequest is the request body for a manual (bulk or single) match
type BulkMatchRequest struct {
	TransactionIDs  []string `json:"transactionIds"`
	TenantID        *string  `json:"tenantId,omitempty"`
	LeaseID         *string  `json:"leaseId,omitempty"`
	TransactionType *string  `json:"transactionType,omitempty"`
	BuildingID      *string  `json:"buildingId,omitempty"`
	CreateRule      bool     `json:"createRule"`
}

// BulkMatchResponse reports a manual match and the optionally derived rule
type BulkMatchResponse struct {
	Success bool            `json:"success"`
	Updated int             `json:"updated"`
	Failed  int             `json:"failed"`
	Rule    *matchrule.Rule `json:"rule,omitempty"`
}

type matchErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HandleRuleMatch handles POST /api/match/rule - preview or apply a rule
func (h *MatchHandler) HandleRuleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMatchError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	orgID, ok := middleware.OrgIDFromContext(r.Context())
	if !ok {
		writeMatchError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req RuleMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding rule match request: %v", err)
		writeMatchError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RuleID == "" {
		writeMatchError(w, http.StatusBadRequest, "ruleId is required")
		return
	}

	if req.Preview {
		matches, err := h.matchService.PreviewRule(r.Context(), orgID, req.RuleID)
		if err != nil {
			h.writeRuleMatchFailure(w, orgID, req.RuleID, err)
			return
		}
		writeJSON(w, http.StatusOK, RuleMatchPreviewResponse{Success: true, Matches: matches})
		return
	}

	result, err := h.matchService.ApplyRule(r.Context(), orgID, req.RuleID, req.TransactionIDs)
	if err != nil {
		h.writeRuleMatchFailure(w, orgID, req.RuleID, err)
		return
	}

	writeJSON(w, http.StatusOK, RuleMatchApplyResponse{
		Success: true,
		Applied: result.Applied,
		Skipped: result.Skipped,
		Failed:  result.Failed,
	})
}

// HandleBulkMatch handles POST /api/match/bulk - manual match with optional rule derivation
func (h *MatchHandler) HandleBulkMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMatchError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	orgID, ok := middleware.OrgIDFromContext(r.Context())
	if !ok {
		writeMatchError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req BulkMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding bulk match request: %v", err)
		writeMatchError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.TransactionIDs) == 0 {
		writeMatchError(w, http.StatusBadRequest, "transactionIds is required")
		return
	}

	var txType *banking.TransactionType
	if req.TransactionType != nil {
		t := banking.TransactionType(*req.TransactionType)
		if !t.Valid() {
			writeMatchError(w, http.StatusBadRequest, "Unknown transaction type")
			return
		}
		txType = &t
	}

	result, err := h.matchService.ApplyBulk(r.Context(), orgID, matchrule.BulkMatchParams{
		TransactionIDs: req.TransactionIDs,
		Target: banking.Assignment{
			TenantID:   req.TenantID,
			LeaseID:    req.LeaseID,
			Type:       txType,
			BuildingID: req.BuildingID,
		},
		CreateRule: req.CreateRule,
	})
	if err != nil {
		if errors.Is(err, matchrule.ErrEmptyTarget) || errors.Is(err, banking.ErrEmptyAssignment) {
			writeMatchError(w, http.StatusBadRequest, "At least one target field is required")
			return
		}
		log.Printf("Error bulk matching for org %d: %v", orgID, err)
		writeMatchError(w, http.StatusInternalServerError, "Failed to match transactions")
		return
	}

	writeJSON(w, http.StatusOK, BulkMatchResponse{
		Success: true,
		Updated: result.Updated,
		Failed:  result.Failed,
		Rule:    result.Rule,
	})
}

func (h *MatchHandler) writeRuleMatchFailure(w http.ResponseWriter, orgID int64, ruleID string, err error) {
	switch {
	case errors.Is(err, matchrule.ErrRuleNotFound):
		writeMatchError(w, http.StatusNotFound, "Rule not found")
	case errors.Is(err, matchrule.ErrForbidden):
		writeMatchError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, banking.ErrEmptyAssignment):
		writeMatchError(w, http.StatusBadRequest, "Rule target is empty")
	default:
		log.Printf("Error matching rule %s for org %d: %v", ruleID, orgID, err)
		writeMatchError(w, http.StatusInternalServerError, "Failed to match rule")
	}
}

func writeMatchError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, matchErrorResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
