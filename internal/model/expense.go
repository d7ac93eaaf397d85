package model

import "time"

// Expense mirrors the `expenses` table.
type Expense struct {
	ExpenseID string    `json:"expenseId"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// CategoryTotal is one row of the expenses-by-category aggregation.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// DashboardMetrics is the aggregate payload behind GET /dashboard.
type DashboardMetrics struct {
	PopularProducts          []Product       `json:"popularProducts"`
	ExpenseByCategorySummary []CategoryTotal `json:"expenseByCategorySummary"`
	TotalExpenses            float64         `json:"totalExpenses"`
	UserCount                int64           `json:"userCount"`
}
