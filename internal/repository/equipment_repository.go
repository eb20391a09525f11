package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
)

// EquipmentRepository provides database access for the equipment catalogue.
type EquipmentRepository struct {
	db *sqlx.DB
}

// NewEquipmentRepository creates a new instance of EquipmentRepository.
func NewEquipmentRepository(db *sqlx.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// List returns equipment matching the filter, ordered by name.
func (r *EquipmentRepository) List(ctx context.Context, filter models.EquipmentFilter) ([]models.Equipment, error) {
	query := `SELECT id, name, category, condition, quantity, description, created_at, updated_at FROM equipment WHERE 1=1`
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		query += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(description) LIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY name"

	var items []models.Equipment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return items, nil
}

// FindByID returns an equipment item by identifier.
func (r *EquipmentRepository) FindByID(ctx context.Context, id string) (*models.Equipment, error) {
	const query = `SELECT id, name, category, condition, quantity, description, created_at, updated_at FROM equipment WHERE id = $1 LIMIT 1`
	var item models.Equipment
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find equipment by id: %w", err)
	}
	return &item, nil
}

// Categories returns the distinct equipment categories in use.
func (r *EquipmentRepository) Categories(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT category FROM equipment ORDER BY category`
	var categories []string
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list equipment categories: %w", err)
	}
	return categories, nil
}

// Create inserts a new equipment record.
func (r *EquipmentRepository) Create(ctx context.Context, item *models.Equipment) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	const query = `INSERT INTO equipment (id, name, category, condition, quantity, description, created_at, updated_at) VALUES (:id, :name, :category, :condition, :quantity, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}
	return nil
}

// Update updates mutable fields of an equipment record.
func (r *EquipmentRepository) Update(ctx context.Context, item *models.Equipment) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE equipment SET name = :name, category = :category, condition = :condition, quantity = :quantity, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update equipment: %w", err)
	}
	return nil
}

// Delete removes an equipment record.
func (r *EquipmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM equipment WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete equipment: %w", err)
	}
	return nil
}
