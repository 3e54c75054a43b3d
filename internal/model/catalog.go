package model

import "time"

// Setting names. The stored values are the ones the catalog has always used.
const (
	SettingRepetitions = "repetitions"
	SettingWeight      = "poids"
	SettingDistance    = "distance"
	SettingCalories    = "calories"
	SettingAddedLoad   = "lestes"
)

// SettingNames lists every known setting in display order.
var SettingNames = []string{
	SettingRepetitions,
	SettingWeight,
	SettingDistance,
	SettingCalories,
	SettingAddedLoad,
}

func IsKnownSetting(name string) bool {
	for _, n := range SettingNames {
		if n == name {
			return true
		}
	}
	return false
}

type Equipment struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	FounderID string    `db:"founder_id"`
	CreatedAt time.Time `db:"created_at"`
}

type MovementSetting struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	FounderID string    `db:"founder_id"`
	CreatedAt time.Time `db:"created_at"`
}

type Movement struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	EquipmentID string    `db:"equipment_id"`
	FounderID   string    `db:"founder_id"`
	CreatedAt   time.Time `db:"created_at"`

	// Joined fields (not in movements table)
	EquipmentName string   `db:"equipment_name"`
	SettingNames  []string `db:"-"`
}
