package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"mietwerk/internal/domain/banking"
	"mietwerk/internal/domain/matchrule"
	"mietwerk/internal/shared/middleware"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 500
)

type TransactionHandler struct {
	transactionRepo banking.Repository
	matchService    *matchrule.Service
}

func NewTransactionHandler(transactionRepo banking.Repository, matchService *matchrule.Service) *TransactionHandler {
	return &TransactionHandler{
		transactionRepo: transactionRepo,
		matchService:    matchService,
	}
}

// HandleTransactions handles GET /api/transactions/?status=&limit=&offset=
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orgID, ok := middleware.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status := banking.MatchStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = banking.StatusUnmatched
	}
	if !status.Valid() {
		http.Error(w, "Invalid match status", http.StatusBadRequest)
		return
	}

	limit := queryInt(r, "limit", defaultTransactionLimit)
	if limit < 1 || limit > maxTransactionLimit {
		limit = defaultTransactionLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	transactions, err := h.transactionRepo.ListByStatus(r.Context(), orgID, status, limit, offset)
	if err != nil {
		log.Printf("Error listing transactions for org %d: %v", orgID, err)
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}

	if transactions == nil {
		transactions = []*banking.Transaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}

// HandleTransactionByID handles GET /api/transactions/{id}
func (h *TransactionHandler) HandleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orgID, ok := middleware.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	txn, err := h.transactionRepo.GetByID(r.Context(), orgID, id)
	if err != nil {
		log.Printf("Error getting transaction %s for org %d: %v", id, orgID, err)
		http.Error(w, "Failed to get transaction", http.StatusInternalServerError)
		return
	}
	if txn == nil {
		http.Error(w, "Transaction not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(txn)
}

// HandleIgnoreTransaction handles POST /api/transactions/{id}/ignore
func (h *TransactionHandler) HandleIgnoreTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orgID, ok := middleware.OrgIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	txn, err := h.matchService.IgnoreTransaction(r.Context(), orgID, id)
	if err != nil {
		switch {
		case errors.Is(err, banking.ErrTransactionNotFound):
			http.Error(w, "Transaction not found", http.StatusNotFound)
		case errors.Is(err, banking.ErrInvalidTransition):
			http.Error(w, "Only unmatched transactions can be ignored", http.StatusConflict)
		case errors.Is(err, banking.ErrStatusConflict):
			http.Error(w, "Transaction was matched concurrently", http.StatusConflict)
		default:
			log.Printf("Error ignoring transaction %s for org %d: %v", id, orgID, err)
			http.Error(w, "Failed to ignore transaction", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(txn)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
