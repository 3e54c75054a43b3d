package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fitlg/fitlg/internal/model"
	"github.com/fitlg/fitlg/internal/repository"
)

const allMovementsKey = "movements:all"

// MovementView is the JSON shape of a catalog movement.
type MovementView struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Equipment string   `json:"equipement"`
	Settings  []string `json:"settings"`
}

type CatalogService struct {
	equipmentRepository repository.EquipmentRepository
	settingRepository   repository.SettingRepository
	movementRepository  repository.MovementRepository
	cache               *chunkedCache
}

func NewCatalogService(
	equipmentRepository repository.EquipmentRepository,
	settingRepository repository.SettingRepository,
	movementRepository repository.MovementRepository,
	cacheSize int,
	cacheTTL time.Duration,
) *CatalogService {
	return &CatalogService{
		equipmentRepository: equipmentRepository,
		settingRepository:   settingRepository,
		movementRepository:  movementRepository,
		cache:               newChunkedCache(cacheSize, cacheTTL),
	}
}

// NormalizeName trims and lowercases a catalog name.
func NormalizeName(name string) string {
	return cases.Lower(language.French).String(strings.TrimSpace(name))
}

// EnsureEquipment returns the equipment with that name, creating it if needed.
func (s *CatalogService) EnsureEquipment(ctx context.Context, founderID, name string) (*model.Equipment, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, invalid("equipment", "name is required")
	}

	equipment, err := s.equipmentRepository.ByName(ctx, name)
	if err == nil {
		return equipment, nil
	}
	if !errors.Is(err, repository.ErrEquipmentNotFound) {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}

	equipment = &model.Equipment{
		ID:        uuid.New().String(),
		Name:      name,
		FounderID: founderID,
		CreatedAt: time.Now().UTC(),
	}
	err = s.equipmentRepository.Create(ctx, equipment)
	if err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}

	return equipment, nil
}

// EnsureSetting returns the setting with that name, creating it if needed.
func (s *CatalogService) EnsureSetting(ctx context.Context, founderID, name string) (*model.MovementSetting, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, invalid("setting", "name is required")
	}

	setting, err := s.settingRepository.ByName(ctx, name)
	if err == nil {
		return setting, nil
	}
	if !errors.Is(err, repository.ErrSettingNotFound) {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}

	setting = &model.MovementSetting{
		ID:        uuid.New().String(),
		Name:      name,
		FounderID: founderID,
		CreatedAt: time.Now().UTC(),
	}
	err = s.settingRepository.Create(ctx, setting)
	if err != nil {
		return nil, fmt.Errorf("failed to create setting: %w", err)
	}

	return setting, nil
}

// CreateMovement adds a movement using existing equipment and settings.
func (s *CatalogService) CreateMovement(ctx context.Context, founderID, name, equipmentName string, settingNames ...string) (*model.Movement, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, invalid("movement", "name is required")
	}

	equipment, err := s.equipmentRepository.ByName(ctx, NormalizeName(equipmentName))
	if errors.Is(err, repository.ErrEquipmentNotFound) {
		return nil, invalid("equipment", "unknown equipment %q", equipmentName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}

	movement := &model.Movement{
		ID:            uuid.New().String(),
		Name:          name,
		EquipmentID:   equipment.ID,
		FounderID:     founderID,
		CreatedAt:     time.Now().UTC(),
		EquipmentName: equipment.Name,
	}
	err = s.movementRepository.Create(ctx, movement)
	if err != nil {
		return nil, fmt.Errorf("failed to create movement: %w", err)
	}
	s.invalidate()

	if len(settingNames) > 0 {
		err = s.AssociateSettings(ctx, movement.ID, settingNames...)
		if err != nil {
			return nil, err
		}
	}

	return s.movementRepository.ByID(ctx, movement.ID)
}

// AssociateSettings links settings to a movement. Settings already linked are kept,
// so the movement ends up with the union of both sets.
func (s *CatalogService) AssociateSettings(ctx context.Context, movementID string, settingNames ...string) error {
	names := make([]string, 0, len(settingNames))
	for _, n := range settingNames {
		names = append(names, NormalizeName(n))
	}

	settings, err := s.settingRepository.ByNames(ctx, names...)
	if errors.Is(err, repository.ErrSettingNotFound) {
		return &ValidationError{Field: "settings", Message: err.Error()}
	}
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	ids := make([]string, 0, len(settings))
	for _, st := range settings {
		ids = append(ids, st.ID)
	}

	err = s.movementRepository.AddSettings(ctx, movementID, ids...)
	if err != nil {
		return fmt.Errorf("failed to associate settings: %w", err)
	}
	s.invalidate()

	return nil
}

func (s *CatalogService) MovementByName(ctx context.Context, name string) (*model.Movement, error) {
	return s.movementRepository.ByName(ctx, NormalizeName(name))
}

// DeleteMovement removes a movement from the catalog. Only admins may do this.
func (s *CatalogService) DeleteMovement(ctx context.Context, actor *model.User, movementID string) error {
	if actor == nil || !actor.IsAdmin {
		return ErrForbidden
	}

	err := s.movementRepository.Delete(ctx, movementID)
	if err != nil {
		return err
	}
	s.invalidate()

	slog.Info("movement deleted", "movement_id", movementID, "user_id", actor.ID)
	return nil
}

func (s *CatalogService) AllMovements(ctx context.Context) ([]MovementView, error) {
	movements, err := s.movementRepository.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	views := make([]MovementView, 0, len(movements))
	for _, m := range movements {
		settings := m.SettingNames
		if settings == nil {
			settings = []string{}
		}
		views = append(views, MovementView{
			ID:        m.ID,
			Name:      m.Name,
			Equipment: m.EquipmentName,
			Settings:  settings,
		})
	}

	return views, nil
}

// AllMovementsJSON returns the encoded movement list, served from the cache when possible.
func (s *CatalogService) AllMovementsJSON(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(allMovementsKey); ok {
			return cached, nil
		}
	}

	views, err := s.AllMovements(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(views)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		err = s.cache.Set(allMovementsKey, data)
		if err != nil {
			slog.Warn("failed to cache movements", "error", err)
		}
	}

	return data, nil
}

func (s *CatalogService) invalidate() {
	if s.cache != nil {
		s.cache.Del(allMovementsKey)
	}
}
