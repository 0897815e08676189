package class

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
)

var (
	ErrNotFound   = errors.New("class not found")
	ErrNameExists = errors.New("a class with this name already exists")
)

type Class struct {
	ID        int       `db:"id" json:"id" yaml:"id"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	Date      core.Date `db:"date" json:"date" yaml:"date"`
	Professor string    `db:"professor" json:"professor" yaml:"professor"`
}

type NewClass struct {
	Name      string `json:"name" validate:"notblank,max=100"`
	Date      string `json:"date" validate:"required,date"`
	Professor string `json:"professor" validate:"notblank,max=100"`
}

type UpdateClass NewClass

type Repository interface {
	CheckNameUniqueness(ctx context.Context, name string, excludedIDs ...int) error
	CreateClass(ctx context.Context, c Class) (Class, error)
	QueryClasses(ctx context.Context) ([]Class, error)
	GetClassByID(ctx context.Context, id int) (Class, error)
	UpdateClass(ctx context.Context, c Class) (Class, error)
	DeleteClass(ctx context.Context, id int) error
}

type Service struct {
	repo   Repository
	logger core.Logger
}

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (svc *Service) clean(ctx context.Context, nc NewClass, excludedIDs ...int) (Class, error) {
	if err := core.ValidateStruct(nc); err != nil {
		return Class{}, err
	}
	date, err := core.ParseDate(nc.Date)
	if err != nil {
		return Class{}, err
	}
	c := Class{
		Name:      core.CleanString(nc.Name),
		Date:      date,
		Professor: core.CleanString(nc.Professor),
	}
	if err := svc.repo.CheckNameUniqueness(ctx, c.Name, excludedIDs...); err != nil {
		if errors.Is(err, ErrNameExists) {
			return Class{}, core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return Class{}, err
	}
	return c, nil
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	c, err := svc.clean(ctx, nc)
	if err != nil {
		return Class{}, err
	}
	if c, err = svc.repo.CreateClass(ctx, c); err != nil {
		return Class{}, errors.Wrap(err, "creating class")
	}
	svc.logger.Info("class created", "class_id", c.ID, "name", c.Name)
	return c, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryClasses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateClass) (Class, error) {
	orig, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	c, err := svc.clean(ctx, NewClass(uc), orig.ID)
	if err != nil {
		return Class{}, err
	}
	c.ID = orig.ID
	if c, err = svc.repo.UpdateClass(ctx, c); err != nil {
		return Class{}, errors.Wrap(err, "updating class")
	}
	svc.logger.Info("class updated", "class_id", c.ID)
	return c, nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if err := svc.repo.DeleteClass(ctx, id); err != nil {
		return err
	}
	svc.logger.Info("class deleted", "class_id", id)
	return nil
}
