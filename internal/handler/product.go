package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stockify/stockify-server/internal/model"
	"github.com/stockify/stockify-server/internal/repository"
	"github.com/stockify/stockify-server/internal/utils"
)

// ProductHandler serves the product endpoints backing the inventory
// views.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(products *repository.ProductRepo) *ProductHandler {
	return &ProductHandler{Products: products}
}

// GetProducts lists products, optionally filtered with ?search=.
func (h *ProductHandler) GetProducts(c echo.Context) error {
	search := strings.TrimSpace(c.QueryParam("search"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	products, err := h.Products.List(ctx, search)
	if err != nil {
		log.Printf("list products failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error retrieving products"})
	}
	return c.JSON(http.StatusOK, products)
}

type createProductReq struct {
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Rating        *float64 `json:"rating"`
	StockQuantity int64    `json:"stockQuantity"`
}

// CreateProduct inserts a product. ADMIN or STAFF.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing product name"})
	}
	if req.Price < 0 || req.StockQuantity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Price and stock quantity must be non-negative"})
	}

	product := model.Product{
		ProductID:     utils.NewID("prod"),
		Name:          req.Name,
		Price:         req.Price,
		Rating:        req.Rating,
		StockQuantity: req.StockQuantity,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Products.Create(ctx, product); err != nil {
		log.Printf("create product failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error creating product"})
	}
	return c.JSON(http.StatusCreated, product)
}
