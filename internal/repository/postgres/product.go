package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Aphidet6/earth-bettashop/internal/domain"
	"github.com/Aphidet6/earth-bettashop/pkg/database"
	apperrors "github.com/Aphidet6/earth-bettashop/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = "id, seller_id, name, description, price, stock_quantity, category_id, image_url, is_active, created_at, updated_at"

// Create inserts a new product and fills in the generated id and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (seller_id, name, description, price, stock_quantity, category_id, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.SellerID,
		p.Name,
		p.Description,
		p.Price,
		p.StockQuantity,
		p.CategoryID,
		p.ImageURL,
		p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p domain.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.SellerID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.StockQuantity,
		&p.CategoryID,
		&p.ImageURL,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// List returns active products matching the filter, newest first.
func (r *ProductRepository) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = TRUE`
	args := []any{}
	idx := 1

	if f.Query != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", idx)
		args = append(args, "%"+f.Query+"%")
		idx++
	}
	if f.CategoryID != nil {
		query += fmt.Sprintf(" AND category_id = $%d", idx)
		args = append(args, *f.CategoryID)
		idx++
	}
	if f.MinPrice != nil {
		query += fmt.Sprintf(" AND price >= $%d", idx)
		args = append(args, *f.MinPrice)
		idx++
	}
	if f.MaxPrice != nil {
		query += fmt.Sprintf(" AND price <= $%d", idx)
		args = append(args, *f.MaxPrice)
		idx++
	}

	limit := f.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.SellerID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.StockQuantity,
			&p.CategoryID,
			&p.ImageURL,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// Update modifies an existing product in the database.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock_quantity = $4,
		    category_id = $5, image_url = $6, is_active = $7, updated_at = $8
		WHERE id = $9`

	ct, err := r.db.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Price,
		p.StockQuantity,
		p.CategoryID,
		p.ImageURL,
		p.IsActive,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product from the database by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}
