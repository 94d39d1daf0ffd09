package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mietwerk/internal/domain/matchrule"
)

func TestHandleCreateRule(t *testing.T) {
	tests := []struct {
		name           string
		body           CreateRuleRequest
		expectedStatus int
	}{
		{
			name: "Success",
			body: CreateRuleRequest{
				Name: "Mustermann Miete",
				Conditions: []matchrule.Condition{
					{Field: matchrule.FieldCounterpartName, Operator: matchrule.OpContains, Value: "Mustermann"},
				},
				Target: TargetRequest{TenantID: strPtr("tenant-7")},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Missing Name",
			body: CreateRuleRequest{
				Conditions: []matchrule.Condition{
					{Field: matchrule.FieldPurpose, Operator: matchrule.OpContains, Value: "Miete"},
				},
				Target: TargetRequest{TenantID: strPtr("tenant-7")},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid Condition",
			body: CreateRuleRequest{
				Name: "Broken",
				Conditions: []matchrule.Condition{
					{Field: matchrule.FieldAmountCents, Operator: matchrule.OpContains, Value: "85"},
				},
				Target: TargetRequest{TenantID: strPtr("tenant-7")},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Empty Target",
			body: CreateRuleRequest{
				Name: "No Target",
				Conditions: []matchrule.Condition{
					{Field: matchrule.FieldPurpose, Operator: matchrule.OpContains, Value: "Miete"},
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Unknown Target Type",
			body: CreateRuleRequest{
				Name: "Bad Type",
				Conditions: []matchrule.Condition{
					{Field: matchrule.FieldPurpose, Operator: matchrule.OpContains, Value: "Miete"},
				},
				Target: TargetRequest{TransactionType: strPtr("lottery")},
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ruleRepo := &MockRuleRepo{
				CreateFunc: func(ctx context.Context, params matchrule.CreateRuleParams) (*matchrule.Rule, error) {
					return &matchrule.Rule{
						ID:         "rule-new",
						OrgID:      params.OrgID,
						Name:       params.Name,
						Conditions: params.Conditions,
						Target:     params.Target,
					}, nil
				},
			}
			handler := NewRuleHandler(matchrule.NewService(ruleRepo, &MockTransactionRepo{}))

			body, _ := json.Marshal(tt.body)
			req := authedRequest(http.MethodPost, "/api/rules/", body, 1)
			rr := httptest.NewRecorder()

			handler.HandleRules(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body: %s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}
}

func TestHandleListRules(t *testing.T) {
	ruleRepo := &MockRuleRepo{
		ListByOrgIDFunc: func(ctx context.Context, orgID int64) ([]*matchrule.Rule, error) {
			return []*matchrule.Rule{testRule(orgID)}, nil
		},
	}
	handler := NewRuleHandler(matchrule.NewService(ruleRepo, &MockTransactionRepo{}))

	req := authedRequest(http.MethodGet, "/api/rules/", nil, 1)
	rr := httptest.NewRecorder()

	handler.HandleRules(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var got []*matchrule.Rule
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].ID != "rule-1" {
		t.Errorf("rules = %d, want exactly rule-1", len(got))
	}
}

func TestHandleRuleByID(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		rule           *matchrule.Rule
		expectedStatus int
	}{
		{
			name:           "Get Success",
			method:         http.MethodGet,
			rule:           testRule(1),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Get Not Found",
			method:         http.MethodGet,
			rule:           nil,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Get Foreign Rule",
			method:         http.MethodGet,
			rule:           testRule(99),
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Delete Success",
			method:         http.MethodDelete,
			rule:           testRule(1),
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "Delete Foreign Rule",
			method:         http.MethodDelete,
			rule:           testRule(99),
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ruleRepo := &MockRuleRepo{
				GetByIDFunc: func(ctx context.Context, id string) (*matchrule.Rule, error) {
					return tt.rule, nil
				},
			}
			handler := NewRuleHandler(matchrule.NewService(ruleRepo, &MockTransactionRepo{}))

			mux := http.NewServeMux()
			mux.HandleFunc("/api/rules/{id}", handler.HandleRuleByID)

			req := authedRequest(tt.method, "/api/rules/rule-1", nil, 1)
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}
