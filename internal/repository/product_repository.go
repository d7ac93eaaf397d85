package repository

import (
	"context"
	"database/sql"

	"github.com/stockify/stockify-server/internal/model"
)

type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productColumns = "product_id,name,price,rating,stock_quantity"

func scanProduct(s rowScanner) (model.Product, error) {
	var (
		p      model.Product
		rating sql.NullFloat64
	)
	if err := s.Scan(&p.ProductID, &p.Name, &p.Price, &rating, &p.StockQuantity); err != nil {
		return model.Product{}, err
	}
	if rating.Valid {
		p.Rating = &rating.Float64
	}
	return p, nil
}

// List returns products, optionally filtered by a name substring.
func (r *ProductRepo) List(ctx context.Context, search string) ([]model.Product, error) {
	query := "SELECT " + productColumns + " FROM products ORDER BY name"
	args := []any{}
	if search != "" {
		query = "SELECT " + productColumns + " FROM products WHERE name LIKE ? ORDER BY name"
		args = append(args, "%"+search+"%")
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Create inserts a product.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO products ("+productColumns+") VALUES (?,?,?,?,?)",
		p.ProductID, p.Name, p.Price, p.Rating, p.StockQuantity)
	return err
}

// Popular returns the products with the highest stock counts, used by
// the dashboard.
func (r *ProductRepo) Popular(ctx context.Context, limit int) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY stock_quantity DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
