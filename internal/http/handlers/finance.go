package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/aura-clinic/aura/internal/http/respond"
	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/models/dto"
	"github.com/aura-clinic/aura/internal/storage"
)

// FinanceHandler owns the /financeiro endpoints.
type FinanceHandler struct {
	store  storage.TransactionStore
	logger *slog.Logger
}

func NewFinanceHandler(store storage.TransactionStore, logger *slog.Logger) *FinanceHandler {
	return &FinanceHandler{store: store, logger: logger}
}

func (h *FinanceHandler) Register(r *mux.Router, authed Middleware) {
	r.Handle("/financeiro/", authed(http.HandlerFunc(h.handleList))).Methods(http.MethodGet)
	r.Handle("/financeiro/transacoes/", authed(http.HandlerFunc(h.handleList))).Methods(http.MethodGet)
	r.Handle("/financeiro/transacoes/", authed(http.HandlerFunc(h.handleCreate))).Methods(http.MethodPost)
}

func (h *FinanceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req dto.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	req.Kind = strings.TrimSpace(req.Kind)
	req.Category = strings.TrimSpace(req.Category)
	if req.Description == "" || req.Kind == "" || req.Category == "" {
		respond.Error(w, http.StatusBadRequest, "description, type and category are required")
		return
	}

	created, err := h.store.CreateTransaction(r.Context(), models.Transaction{
		Description: req.Description,
		Value:       req.Value,
		Kind:        req.Kind,
		Category:    req.Category,
		Paid:        req.Paid,
		OwnerID:     &uid,
	})
	if err != nil {
		h.logger.Error("create transaction", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *FinanceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	txs, err := h.store.ListTransactions(r.Context(), uid)
	if err != nil {
		h.logger.Error("list transactions", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	respond.JSON(w, http.StatusOK, txs)
}
