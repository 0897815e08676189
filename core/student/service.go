package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string, excludedIDs ...int) error
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByName(ctx context.Context, name string) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudent(ctx context.Context, id int) error
	}

	// LevelChecker reports whether a proficiency level exists.
	LevelChecker interface {
		Exists(ctx context.Context, name string) (bool, error)
	}
)

type Service struct {
	repo   Repository
	levels LevelChecker
	logger core.Logger
}

func NewService(repo Repository, levels LevelChecker, logger core.Logger) *Service {
	return &Service{repo: repo, levels: levels, logger: logger}
}

func (svc *Service) validate(ctx context.Context, ns NewStudent, excludedIDs ...int) error {
	if err := core.ValidateStruct(ns); err != nil {
		return err
	}
	name := core.CleanString(ns.Name)
	if err := svc.repo.CheckNameUniqueness(ctx, name, excludedIDs...); err != nil {
		if errors.Is(err, ErrNameExists) {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	ok, err := svc.levels.Exists(ctx, core.CleanString(ns.Level))
	if err != nil {
		return errors.Wrap(err, "checking level")
	}
	if !ok {
		return core.NewValidationError(ErrUnknownLevel, core.FieldError{Field: "level", Error: ErrUnknownLevel.Error()})
	}
	return nil
}

// Enroll registers a new student.
func (svc *Service) Enroll(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.validate(ctx, ns); err != nil {
		return Student{}, err
	}
	s, err := svc.repo.CreateStudent(ctx, newStudent(ns))
	if err != nil {
		return Student{}, errors.Wrap(err, "enrolling student")
	}
	svc.logger.Info("student enrolled", "student_id", s.ID, "name", s.Name)
	return s, nil
}

func (svc *Service) QueryAll(ctx context.Context, filter QueryFilter) ([]Student, error) {
	filter.Search = core.CleanString(filter.Search)
	filter.Level = core.CleanString(filter.Level)
	return svc.repo.QueryStudents(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByName(ctx context.Context, name string) (Student, error) {
	return svc.repo.GetStudentByName(ctx, core.CleanString(name))
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err := svc.validate(ctx, NewStudent(us), orig.ID); err != nil {
		return Student{}, err
	}
	s := newStudent(NewStudent(us))
	s.ID = orig.ID
	if us.UserID == 0 {
		s.UserID = orig.UserID // keep the link unless a new one is given
	}
	s, err = svc.repo.UpdateStudent(ctx, s)
	if err != nil {
		return Student{}, errors.Wrap(err, "updating student")
	}
	svc.logger.Info("student updated", "student_id", s.ID)
	return s, nil
}

// Delete removes a student. Rewards and payments referencing it are left in place.
func (svc *Service) Delete(ctx context.Context, id int) error {
	if err := svc.repo.DeleteStudent(ctx, id); err != nil {
		return err
	}
	svc.logger.Info("student deleted", "student_id", id)
	return nil
}

func (svc *Service) Exists(ctx context.Context, id int) (bool, error) {
	if _, err := svc.repo.GetStudentByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
