package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/repositories"
)

type LeaseHandler struct {
	Repo *repositories.LeaseRepository
}

func NewLeaseHandler(repo *repositories.LeaseRepository) *LeaseHandler {
	return &LeaseHandler{Repo: repo}
}

// List handles GET /api/leases
func (h *LeaseHandler) List(w http.ResponseWriter, r *http.Request) {
	leases, err := h.Repo.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leases)
}

// Get handles GET /api/leases/{id}
func (h *LeaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid lease ID", http.StatusBadRequest)
		return
	}

	lease, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lease)
}

// Balance handles GET /api/leases/{id}/balance
func (h *LeaseHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid lease ID", http.StatusBadRequest)
		return
	}

	balance, err := h.Repo.Balance(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}
