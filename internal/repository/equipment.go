package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fitlg/fitlg/internal/model"
)

var (
	ErrEquipmentNotFound  = errors.New("equipment not found")
	ErrDuplicateEquipment = errors.New("equipment already exists")
)

type EquipmentRepository interface {
	Create(ctx context.Context, equipment *model.Equipment) error
	ByName(ctx context.Context, name string) (*model.Equipment, error)
	All(ctx context.Context) ([]*model.Equipment, error)
}

type equipmentRepository struct {
	db *sqlx.DB
}

func NewEquipmentRepository(db *sqlx.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) Create(ctx context.Context, equipment *model.Equipment) error {
	query := `INSERT INTO equipment (id, name, founder_id, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, equipment.ID, equipment.Name, equipment.FounderID, equipment.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEquipment
	}
	return err
}

func (r *equipmentRepository) ByName(ctx context.Context, name string) (*model.Equipment, error) {
	equipment := &model.Equipment{}
	query := `SELECT * FROM equipment WHERE name = $1`

	err := r.db.GetContext(ctx, equipment, query, name)
	if err == sql.ErrNoRows {
		return nil, ErrEquipmentNotFound
	}
	if err != nil {
		return nil, err
	}

	return equipment, nil
}

func (r *equipmentRepository) All(ctx context.Context) ([]*model.Equipment, error) {
	var equipment []*model.Equipment
	query := `SELECT * FROM equipment ORDER BY name ASC`

	err := r.db.SelectContext(ctx, &equipment, query)
	if err != nil {
		return nil, err
	}

	return equipment, nil
}
