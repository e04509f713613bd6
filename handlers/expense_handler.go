package handlers

import (
	"net/http"
	"strconv"

	"github.com/mokki-app/mokki/middleware"
	"github.com/mokki-app/mokki/services"
)

type ExpenseHandler struct {
	expenseService services.ExpenseService
}

func NewExpenseHandler(expenseService services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	houseID, err := getIDFromURL(r, "houseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.AddExpenseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	expense, err := h.expenseService.AddExpense(r.Context(), houseID, input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"expense": expense}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	houseID, err := getIDFromURL(r, "houseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	expenses, err := h.expenseService.ListExpenses(r.Context(), houseID, currentUserID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"expenses": expenses}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ExpenseHandler) HouseBalances(w http.ResponseWriter, r *http.Request) {
	houseID, err := getIDFromURL(r, "houseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	summary, err := h.expenseService.HouseBalances(r.Context(), houseID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"balances": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
