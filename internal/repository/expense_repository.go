package repository

import (
	"context"
	"database/sql"

	"github.com/stockify/stockify-server/internal/model"
)

type ExpenseRepo struct{ DB *sql.DB }

func NewExpenseRepo(db *sql.DB) *ExpenseRepo { return &ExpenseRepo{DB: db} }

// ByCategory aggregates expenses per category, largest first.
func (r *ExpenseRepo) ByCategory(ctx context.Context) ([]model.CategoryTotal, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT category, COALESCE(SUM(amount),0) FROM expenses GROUP BY category ORDER BY SUM(amount) DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []model.CategoryTotal{}
	for rows.Next() {
		var t model.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Amount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// Total returns the sum of all expenses.
func (r *ExpenseRepo) Total(ctx context.Context) (float64, error) {
	var total float64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount),0) FROM expenses").Scan(&total)
	return total, err
}
