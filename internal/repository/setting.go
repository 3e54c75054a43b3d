package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fitlg/fitlg/internal/model"
)

var (
	ErrSettingNotFound  = errors.New("movement setting not found")
	ErrDuplicateSetting = errors.New("movement setting already exists")
)

type SettingRepository interface {
	Create(ctx context.Context, setting *model.MovementSetting) error
	ByName(ctx context.Context, name string) (*model.MovementSetting, error)
	ByNames(ctx context.Context, names ...string) ([]*model.MovementSetting, error)
	All(ctx context.Context) ([]*model.MovementSetting, error)
}

type settingRepository struct {
	db *sqlx.DB
}

func NewSettingRepository(db *sqlx.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Create(ctx context.Context, setting *model.MovementSetting) error {
	query := `INSERT INTO movement_settings (id, name, founder_id, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, setting.ID, setting.Name, setting.FounderID, setting.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateSetting
	}
	return err
}

func (r *settingRepository) ByName(ctx context.Context, name string) (*model.MovementSetting, error) {
	setting := &model.MovementSetting{}
	query := `SELECT * FROM movement_settings WHERE name = $1`

	err := r.db.GetContext(ctx, setting, query, name)
	if err == sql.ErrNoRows {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, err
	}

	return setting, nil
}

// ByNames returns the settings in the order the names were given.
// Any unknown name fails the whole lookup with ErrSettingNotFound.
func (r *settingRepository) ByNames(ctx context.Context, names ...string) ([]*model.MovementSetting, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM movement_settings WHERE name IN (?)`, names)
	if err != nil {
		return nil, err
	}

	var found []*model.MovementSetting
	err = r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*model.MovementSetting, len(found))
	for _, s := range found {
		byName[s.Name] = s
	}

	settings := make([]*model.MovementSetting, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSettingNotFound, name)
		}
		settings = append(settings, s)
	}
	return settings, nil
}

func (r *settingRepository) All(ctx context.Context) ([]*model.MovementSetting, error) {
	var settings []*model.MovementSetting
	query := `SELECT * FROM movement_settings ORDER BY name ASC`

	err := r.db.SelectContext(ctx, &settings, query)
	if err != nil {
		return nil, err
	}

	return settings, nil
}
