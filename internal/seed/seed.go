// Package seed loads the base movement catalog and the benchmark WODs.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/fitlg/fitlg/internal/markdown"
	"github.com/fitlg/fitlg/internal/model"
	"github.com/fitlg/fitlg/internal/repository"
	"github.com/fitlg/fitlg/internal/service"
)

//go:embed catalog.toml
var catalogTOML []byte

//go:embed wods/*.md
var wodsFS embed.FS

var ErrNoSuperuser = errors.New("superuser username, email and password are required")

type Catalog struct {
	Settings  []string          `toml:"settings"`
	Equipment []string          `toml:"equipment"`
	Movements []CatalogMovement `toml:"movements"`
}

type CatalogMovement struct {
	Name      string   `toml:"name"`
	Equipment string   `toml:"equipment"`
	Settings  []string `toml:"settings"`
}

// WOD is the front matter of a wods/*.md file. The markdown body is the description.
type WOD struct {
	Name      string        `toml:"name"`
	Type      string        `toml:"type"`
	GoalType  string        `toml:"goal_type"`
	GoalValue *int          `toml:"goal_value"`
	Movements []WODMovement `toml:"movements"`
}

type WODMovement struct {
	Name     string         `toml:"name"`
	Order    int            `toml:"order"`
	Settings map[string]int `toml:"settings"`
}

type Superuser struct {
	Username string
	Email    string
	Password string
}

// Report counts what a run created. Rows that already existed are not counted.
type Report struct {
	SuperuserCreated bool
	Movements        int
	Exercises        int
	ExercisesSkipped int
}

type Seeder struct {
	userService     *service.UserService
	catalogService  *service.CatalogService
	exerciseService *service.ExerciseService
	markdown        *markdown.Parser
	wods            fs.FS
}

func NewSeeder(
	userService *service.UserService,
	catalogService *service.CatalogService,
	exerciseService *service.ExerciseService,
	markdown *markdown.Parser,
) *Seeder {
	return &Seeder{
		userService:     userService,
		catalogService:  catalogService,
		exerciseService: exerciseService,
		markdown:        markdown,
		wods:            wodsFS,
	}
}

// LoadCatalog decodes the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	_, err := toml.Decode(string(catalogTOML), &c)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &c, nil
}

// Run creates the superuser, the catalog and the default exercises.
// Running it again only adds what is missing.
func (s *Seeder) Run(ctx context.Context, su Superuser) (*Report, error) {
	if su.Username == "" || su.Email == "" || su.Password == "" {
		return nil, ErrNoSuperuser
	}

	founder, created, err := s.userService.EnsureSuperuser(ctx, su.Username, su.Email, su.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure superuser: %w", err)
	}
	report := &Report{SuperuserCreated: created}

	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}

	err = s.seedCatalog(ctx, founder, catalog, report)
	if err != nil {
		return nil, err
	}

	err = s.seedWODs(ctx, founder, report)
	if err != nil {
		return nil, err
	}

	slog.Info("seed completed",
		"superuser_created", report.SuperuserCreated,
		"movements", report.Movements,
		"exercises", report.Exercises,
		"exercises_skipped", report.ExercisesSkipped,
	)
	return report, nil
}

func (s *Seeder) seedCatalog(ctx context.Context, founder *model.User, catalog *Catalog, report *Report) error {
	for _, name := range catalog.Settings {
		_, err := s.catalogService.EnsureSetting(ctx, founder.ID, name)
		if err != nil {
			return fmt.Errorf("setting %q: %w", name, err)
		}
	}

	for _, name := range catalog.Equipment {
		_, err := s.catalogService.EnsureEquipment(ctx, founder.ID, name)
		if err != nil {
			return fmt.Errorf("equipment %q: %w", name, err)
		}
	}

	for _, m := range catalog.Movements {
		movement, err := s.catalogService.MovementByName(ctx, m.Name)
		switch {
		case errors.Is(err, repository.ErrMovementNotFound):
			_, err = s.catalogService.CreateMovement(ctx, founder.ID, m.Name, m.Equipment, m.Settings...)
			if err == nil {
				report.Movements++
			}
		case err == nil:
			err = s.catalogService.AssociateSettings(ctx, movement.ID, m.Settings...)
		}
		if err != nil {
			return fmt.Errorf("movement %q: %w", m.Name, err)
		}
	}

	return nil
}

func (s *Seeder) seedWODs(ctx context.Context, founder *model.User, report *Report) error {
	files, err := fs.Glob(s.wods, "wods/*.md")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		source, err := fs.ReadFile(s.wods, file)
		if err != nil {
			return err
		}

		var wod WOD
		description, err := s.markdown.Document(source, &wod)
		if err != nil {
			return fmt.Errorf("%s: %w", path.Base(file), err)
		}

		exists, err := s.exerciseService.HasDefault(ctx, wod.Name)
		if err != nil {
			return err
		}
		if exists {
			report.ExercisesSkipped++
			continue
		}

		_, err = s.exerciseService.Register(ctx, founder, wod.Input(string(description)))
		if err != nil {
			return fmt.Errorf("%s: %w", path.Base(file), err)
		}
		report.Exercises++
	}

	return nil
}

// Input converts the WOD to the payload the exercise builder would post.
func (w WOD) Input(description string) service.ExerciseInput {
	movements := make([]WODMovement, len(w.Movements))
	copy(movements, w.Movements)
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].Order < movements[j].Order
	})

	in := service.ExerciseInput{
		Name:         w.Name,
		ExerciseType: w.Type,
		Description:  description,
		GoalType:     w.GoalType,
		Movements:    make([]service.MovementInput, 0, len(movements)),
	}
	if w.GoalValue != nil {
		in.GoalValue = service.NewNumber(float64(*w.GoalValue))
	}

	for _, m := range movements {
		mi := service.MovementInput{
			Name:  m.Name,
			Order: service.NewNumber(float64(m.Order)),
		}
		for _, name := range model.SettingNames {
			if v, ok := m.Settings[name]; ok {
				mi.Settings = append(mi.Settings, service.SettingInput{
					Name:  name,
					Value: service.NewNumber(float64(v)),
				})
			}
		}
		in.Movements = append(in.Movements, mi)
	}

	return in
}
