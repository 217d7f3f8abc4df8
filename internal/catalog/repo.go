package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Filter struct {
	Category    string // id or slug
	Subcategory string // id or slug
	Search      string
	MinPrice    *int64
	MaxPrice    *int64
	InStock     *bool
	Featured    *bool
	Sort        string
	Page        int
	Limit       int
}

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `
	p.id, p.name, p.description, p.price_cents, p.discounted_price_cents,
	p.stock_quantity, p.in_stock, p.featured, p.image_url,
	COALESCE(p.category_id::text, ''), COALESCE(c.name, ''),
	COALESCE(p.subcategory_id::text, ''), COALESCE(sc.name, ''),
	p.created_at, p.updated_at`

const productJoins = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN subcategories sc ON sc.id = p.subcategory_id`

// ListProducts applies the storefront filters and returns one page plus the
// pagination envelope.
func (r *Repo) ListProducts(ctx context.Context, f Filter) (Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 12
	}

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" {
		id, err := r.resolveCategory(ctx, f.Category)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return emptyPage(f.Page), nil
			}
			return Page{}, err
		}
		conds = append(conds, "p.category_id = "+arg(id))
	}
	if f.Subcategory != "" {
		id, err := r.resolveSubcategory(ctx, f.Subcategory)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return emptyPage(f.Page), nil
			}
			return Page{}, err
		}
		conds = append(conds, "p.subcategory_id = "+arg(id))
	}
	if f.Search != "" {
		conds = append(conds, "p.name ILIKE "+arg("%"+f.Search+"%"))
	}
	if f.MinPrice != nil {
		conds = append(conds, "p.price_cents >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "p.price_cents <= "+arg(*f.MaxPrice))
	}
	if f.InStock != nil {
		conds = append(conds, "p.in_stock = "+arg(*f.InStock))
	}
	if f.Featured != nil {
		conds = append(conds, "p.featured = "+arg(*f.Featured))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.DB.QueryRow(ctx, "SELECT COUNT(*)"+productJoins+where, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	order := sortClause(f.Sort)
	offset := (f.Page - 1) * f.Limit
	query := "SELECT" + productColumns + productJoins + where + order +
		" LIMIT " + arg(f.Limit) + " OFFSET " + arg(offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return Page{}, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	totalPages := (total + f.Limit - 1) / f.Limit
	return Page{
		Products:    products,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: f.Page,
		HasNextPage: f.Page < totalPages,
		HasPrevPage: f.Page > 1,
	}, nil
}

func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	row := r.DB.QueryRow(ctx, "SELECT"+productColumns+productJoins+" WHERE p.id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return p, err
}

// ListFeatured returns in-stock featured products, newest first.
func (r *Repo) ListFeatured(ctx context.Context, limit int) ([]Product, error) {
	if limit < 1 || limit > 50 {
		limit = 6
	}
	rows, err := r.DB.Query(ctx, "SELECT"+productColumns+productJoins+`
		WHERE p.featured AND p.in_stock
		ORDER BY p.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, slug, name, description, sort_order, is_active
		FROM categories
		ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.SortOrder, &c.IsActive); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListSubcategories accepts a category id or slug.
func (r *Repo) ListSubcategories(ctx context.Context, category string) ([]Subcategory, error) {
	catID, err := r.resolveCategory(ctx, category)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Subcategory{}, nil
		}
		return nil, err
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, category_id, slug, name, description, sort_order, is_active
		FROM subcategories
		WHERE category_id = $1 AND is_active
		ORDER BY sort_order, name`, catID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subcategory
	for rows.Next() {
		var s Subcategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Slug, &s.Name, &s.Description, &s.SortOrder, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) resolveCategory(ctx context.Context, idOrSlug string) (string, error) {
	var id string
	err := r.DB.QueryRow(ctx,
		`SELECT id FROM categories WHERE id::text = $1 OR slug = $1`, idOrSlug).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: category %s", ErrNotFound, idOrSlug)
	}
	return id, err
}

func (r *Repo) resolveSubcategory(ctx context.Context, idOrSlug string) (string, error) {
	var id string
	err := r.DB.QueryRow(ctx,
		`SELECT id FROM subcategories WHERE id::text = $1 OR slug = $1`, idOrSlug).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: subcategory %s", ErrNotFound, idOrSlug)
	}
	return id, err
}

func sortClause(sort string) string {
	switch sort {
	case "price_asc":
		return " ORDER BY p.price_cents"
	case "price_desc":
		return " ORDER BY p.price_cents DESC"
	case "name_asc":
		return " ORDER BY p.name"
	case "name_desc":
		return " ORDER BY p.name DESC"
	default: // newest
		return " ORDER BY p.created_at DESC"
	}
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.DiscountedPriceCents,
		&p.StockQuantity, &p.InStock, &p.Featured, &p.ImageURL,
		&p.CategoryID, &p.CategoryName,
		&p.SubcategoryID, &p.SubcategoryName,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func emptyPage(page int) Page {
	return Page{Products: []Product{}, CurrentPage: page, HasPrevPage: page > 1}
}
