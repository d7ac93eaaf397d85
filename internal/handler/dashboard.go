package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stockify/stockify-server/internal/model"
	"github.com/stockify/stockify-server/internal/repository"
)

// DashboardHandler aggregates the metrics behind the landing page.
type DashboardHandler struct {
	Products *repository.ProductRepo
	Expenses *repository.ExpenseRepo
	Users    *repository.UserRepo
}

func NewDashboardHandler(products *repository.ProductRepo, expenses *repository.ExpenseRepo, users *repository.UserRepo) *DashboardHandler {
	return &DashboardHandler{Products: products, Expenses: expenses, Users: users}
}

// GetDashboardMetrics returns the aggregate dashboard payload for any
// authenticated user.
func (h *DashboardHandler) GetDashboardMetrics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	popular, err := h.Products.Popular(ctx, 15)
	if err != nil {
		log.Printf("dashboard: popular products failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error retrieving dashboard metrics"})
	}
	byCategory, err := h.Expenses.ByCategory(ctx)
	if err != nil {
		log.Printf("dashboard: expense summary failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error retrieving dashboard metrics"})
	}
	total, err := h.Expenses.Total(ctx)
	if err != nil {
		log.Printf("dashboard: expense total failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error retrieving dashboard metrics"})
	}
	userCount, err := h.Users.Count(ctx)
	if err != nil {
		log.Printf("dashboard: user count failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error retrieving dashboard metrics"})
	}

	return c.JSON(http.StatusOK, model.DashboardMetrics{
		PopularProducts:          popular,
		ExpenseByCategorySummary: byCategory,
		TotalExpenses:            total,
		UserCount:                userCount,
	})
}
