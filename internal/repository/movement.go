package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/fitlg/fitlg/internal/model"
)

var (
	ErrMovementNotFound  = errors.New("movement not found")
	ErrDuplicateMovement = errors.New("movement already exists")
)

type MovementRepository interface {
	Create(ctx context.Context, movement *model.Movement) error
	ByID(ctx context.Context, id string) (*model.Movement, error)
	ByName(ctx context.Context, name string) (*model.Movement, error)
	All(ctx context.Context) ([]*model.Movement, error)
	AddSettings(ctx context.Context, movementID string, settingIDs ...string) error
	Settings(ctx context.Context, movementID string) ([]*model.MovementSetting, error)
	Delete(ctx context.Context, id string) error
}

type movementRepository struct {
	db *sqlx.DB
}

func NewMovementRepository(db *sqlx.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, movement *model.Movement) error {
	query := `INSERT INTO movements (id, name, equipment_id, founder_id, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		movement.ID,
		movement.Name,
		movement.EquipmentID,
		movement.FounderID,
		movement.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateMovement
	}
	return err
}

const movementSelect = `SELECT m.id, m.name, m.equipment_id, m.founder_id, m.created_at, e.name AS equipment_name
	FROM movements m
	JOIN equipment e ON e.id = m.equipment_id`

func (r *movementRepository) ByID(ctx context.Context, id string) (*model.Movement, error) {
	return r.one(ctx, movementSelect+` WHERE m.id = $1`, id)
}

func (r *movementRepository) ByName(ctx context.Context, name string) (*model.Movement, error) {
	return r.one(ctx, movementSelect+` WHERE m.name = $1`, name)
}

func (r *movementRepository) one(ctx context.Context, query string, arg any) (*model.Movement, error) {
	movement := &model.Movement{}

	err := r.db.GetContext(ctx, movement, query, arg)
	if err == sql.ErrNoRows {
		return nil, ErrMovementNotFound
	}
	if err != nil {
		return nil, err
	}

	settings, err := r.Settings(ctx, movement.ID)
	if err != nil {
		return nil, err
	}
	for _, s := range settings {
		movement.SettingNames = append(movement.SettingNames, s.Name)
	}

	return movement, nil
}

// All returns every movement with its equipment name and setting names, ordered by name.
func (r *movementRepository) All(ctx context.Context) ([]*model.Movement, error) {
	var movements []*model.Movement

	err := r.db.SelectContext(ctx, &movements, movementSelect+` ORDER BY m.name ASC`)
	if err != nil {
		return nil, err
	}

	var links []struct {
		MovementID  string `db:"movement_id"`
		SettingName string `db:"setting_name"`
	}
	query := `SELECT l.movement_id, s.name AS setting_name
	          FROM movement_setting_links l
	          JOIN movement_settings s ON s.id = l.setting_id`
	err = r.db.SelectContext(ctx, &links, query)
	if err != nil {
		return nil, err
	}

	byMovement := make(map[string][]string, len(movements))
	for _, l := range links {
		byMovement[l.MovementID] = append(byMovement[l.MovementID], l.SettingName)
	}
	for _, m := range movements {
		m.SettingNames = sortSettingNames(byMovement[m.ID])
	}

	return movements, nil
}

// AddSettings links settings to a movement. Links that already exist are left alone,
// so the result is the union of the current and requested settings.
func (r *movementRepository) AddSettings(ctx context.Context, movementID string, settingIDs ...string) error {
	if len(settingIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO movement_setting_links (movement_id, setting_id) VALUES ($1, $2)
	          ON CONFLICT (movement_id, setting_id) DO NOTHING`
	for _, settingID := range settingIDs {
		_, err := tx.ExecContext(ctx, query, movementID, settingID)
		if err != nil {
			return fmt.Errorf("failed to link setting %s: %w", settingID, err)
		}
	}

	return tx.Commit()
}

func (r *movementRepository) Settings(ctx context.Context, movementID string) ([]*model.MovementSetting, error) {
	var settings []*model.MovementSetting
	query := `SELECT s.* FROM movement_settings s
	          JOIN movement_setting_links l ON l.setting_id = s.id
	          WHERE l.movement_id = $1`

	err := r.db.SelectContext(ctx, &settings, query, movementID)
	if err != nil {
		return nil, err
	}

	rank := settingRank()
	sort.SliceStable(settings, func(i, j int) bool {
		return rank(settings[i].Name) < rank(settings[j].Name)
	})
	return settings, nil
}

func (r *movementRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM movements WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	return expectRow(result, err, ErrMovementNotFound)
}

// settingRank orders settings the way model.SettingNames lists them; unknown names go last.
func settingRank() func(string) int {
	idx := make(map[string]int, len(model.SettingNames))
	for i, n := range model.SettingNames {
		idx[n] = i
	}
	return func(name string) int {
		if i, ok := idx[name]; ok {
			return i
		}
		return len(idx)
	}
}

func sortSettingNames(names []string) []string {
	rank := settingRank()
	sort.SliceStable(names, func(i, j int) bool {
		if rank(names[i]) != rank(names[j]) {
			return rank(names[i]) < rank(names[j])
		}
		return names[i] < names[j]
	})
	if names == nil {
		return []string{}
	}
	return names
}
