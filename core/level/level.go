// Package level manages the extensible set of proficiency levels a student can be enrolled at.
package level

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
)

var (
	ErrNotFound   = errors.New("level not found")
	ErrNameExists = errors.New("a level with this name already exists")
)

// DefaultLevels are seeded on setup.
var DefaultLevels = []string{
	"A1", "A2", "B1", "B2", "C1", "C2",
	"A1_Ad", "A2_Ad", "B1_Ad", "B2_Ad", "C1_Ad", "C2_Ad",
}

type Level struct {
	ID   int    `db:"id" json:"id" yaml:"id"`
	Name string `db:"name" json:"name" yaml:"name"`
}

type levelName struct {
	Name string `json:"name" validate:"notblank,max=20,alphanum_"`
}

type Repository interface {
	// CreateLevel returns ErrNameExists if a level with that name exists.
	CreateLevel(ctx context.Context, name string) (Level, error)
	// CreateLevelsIfAbsent inserts the names that do not exist yet.
	CreateLevelsIfAbsent(ctx context.Context, names ...string) error
	QueryLevels(ctx context.Context) ([]Level, error)
	GetLevelByName(ctx context.Context, name string) (Level, error)
	// RenameLevel renames the level and moves its students to the new name.
	RenameLevel(ctx context.Context, oldName, newName string) error
	DeleteLevel(ctx context.Context, name string) error
}

type Service struct {
	repo   Repository
	logger core.Logger
}

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func validateName(name string) (string, error) {
	name = core.CleanString(name)
	if err := core.ValidateStruct(levelName{Name: name}); err != nil {
		return "", err
	}
	return name, nil
}

// Seed creates the default levels. It is idempotent.
func (svc *Service) Seed(ctx context.Context) error {
	return errors.Wrap(svc.repo.CreateLevelsIfAbsent(ctx, DefaultLevels...), "seeding levels")
}

func (svc *Service) Create(ctx context.Context, name string) (Level, error) {
	name, err := validateName(name)
	if err != nil {
		return Level{}, err
	}
	lvl, err := svc.repo.CreateLevel(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNameExists) {
			return Level{}, core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return Level{}, errors.Wrap(err, "creating level")
	}
	svc.logger.Info("level created", "name", lvl.Name)
	return lvl, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Level, error) {
	return svc.repo.QueryLevels(ctx)
}

func (svc *Service) Exists(ctx context.Context, name string) (bool, error) {
	if _, err := svc.repo.GetLevelByName(ctx, core.CleanString(name)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) Rename(ctx context.Context, oldName, newName string) error {
	oldName = core.CleanString(oldName)
	newName, err := validateName(newName)
	if err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if _, err := svc.repo.GetLevelByName(ctx, oldName); err != nil {
		return err
	}
	if exists, err := svc.Exists(ctx, newName); err != nil {
		return err
	} else if exists {
		return core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	}
	if err := svc.repo.RenameLevel(ctx, oldName, newName); err != nil {
		return errors.Wrap(err, "renaming level")
	}
	svc.logger.Info("level renamed", "from", oldName, "to", newName)
	return nil
}

// Delete removes a level. Students enrolled at it keep the name.
func (svc *Service) Delete(ctx context.Context, name string) error {
	name = core.CleanString(name)
	if err := svc.repo.DeleteLevel(ctx, name); err != nil {
		return err
	}
	svc.logger.Info("level deleted", "name", name)
	return nil
}
