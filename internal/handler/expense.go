package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stockify/stockify-server/internal/repository"
)

// ExpenseHandler serves the expense reporting endpoints.
type ExpenseHandler struct {
	Expenses *repository.ExpenseRepo
}

func NewExpenseHandler(expenses *repository.ExpenseRepo) *ExpenseHandler {
	return &ExpenseHandler{Expenses: expenses}
}

// GetExpensesByCategory returns per-category expense totals. ADMIN or
// MANAGER.
func (h *ExpenseHandler) GetExpensesByCategory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	totals, err := h.Expenses.ByCategory(ctx)
	if err != nil {
		log.Printf("expenses by category failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error retrieving expenses"})
	}
	return c.JSON(http.StatusOK, totals)
}
