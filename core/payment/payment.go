package payment

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/escondite/core"
)

var (
	ErrNotFound         = errors.New("payment not found")
	ErrStudentNotFound  = errors.New("student not found")
	ErrUnderActiveBonus = errors.New("student is currently in a free bonus period")
)

type Payment struct {
	ID        int         `db:"id" json:"id" yaml:"id"`
	StudentID int         `db:"student_id" json:"student_id" yaml:"student_id"`
	Amount    float64     `db:"amount" json:"amount" yaml:"amount"`
	Date      core.Date   `db:"date" json:"date" yaml:"date"`
	Method    null.String `db:"method" json:"method" yaml:"method"`
	Notes     null.String `db:"notes" json:"notes" yaml:"notes"`

	// read-only, joined from students
	StudentName string `db:"student_name" json:"student_name" yaml:"student_name"`
}

type NewPayment struct {
	StudentID int     `json:"student_id" validate:"required,gt=0"`
	Amount    float64 `json:"amount" validate:"gt=0"`
	Date      string  `json:"date" validate:"required,date"`
	Method    string  `json:"method" validate:"max=50"`
	Notes     string  `json:"notes" validate:"max=500"`
}

type UpdatePayment struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	Date   string  `json:"date" validate:"required,date"`
	Method string  `json:"method" validate:"max=50"`
	Notes  string  `json:"notes" validate:"max=500"`
}

type QueryFilter struct {
	Search    string // case-insensitive substring of student name or method
	StudentID int
}

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		QueryPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
		GetPaymentByID(ctx context.Context, id int) (Payment, error)
		UpdatePayment(ctx context.Context, p Payment) (Payment, error)
		DeletePayment(ctx context.Context, id int) error
	}

	// StudentChecker reports whether a student exists.
	StudentChecker interface {
		Exists(ctx context.Context, id int) (bool, error)
	}

	// BonusChecker tells whether a student is covered by a referral bonus on a given day.
	BonusChecker interface {
		IsUnderActiveBonus(ctx context.Context, studentID int, asOf core.Date) (bool, error)
	}
)

type Service struct {
	repo     Repository
	students StudentChecker
	bonuses  BonusChecker
	logger   core.Logger
	today    func() core.Date
}

func NewService(repo Repository, students StudentChecker, bonuses BonusChecker, logger core.Logger, today func() core.Date) *Service {
	return &Service{repo: repo, students: students, bonuses: bonuses, logger: logger, today: today}
}

func optional(s string) null.String {
	s = core.CleanString(s)
	return null.NewString(s, s != "")
}

// Record registers a payment. Students covered by an active bonus do not pay.
func (svc *Service) Record(ctx context.Context, np NewPayment) (Payment, error) {
	if err := core.ValidateStruct(np); err != nil {
		return Payment{}, err
	}
	date, err := core.ParseDate(np.Date)
	if err != nil {
		return Payment{}, err
	}

	ok, err := svc.students.Exists(ctx, np.StudentID)
	if err != nil {
		return Payment{}, errors.Wrap(err, "checking student")
	}
	if !ok {
		return Payment{}, core.NewValidationError(ErrStudentNotFound, core.FieldError{Field: "student_id", Error: ErrStudentNotFound.Error()})
	}
	active, err := svc.bonuses.IsUnderActiveBonus(ctx, np.StudentID, svc.today())
	if err != nil {
		return Payment{}, errors.Wrap(err, "checking bonus")
	}
	if active {
		return Payment{}, ErrUnderActiveBonus
	}

	p, err := svc.repo.CreatePayment(ctx, Payment{
		StudentID: np.StudentID,
		Amount:    np.Amount,
		Date:      date,
		Method:    optional(np.Method),
		Notes:     optional(np.Notes),
	})
	if err != nil {
		return Payment{}, errors.Wrap(err, "recording payment")
	}
	svc.logger.Info("payment recorded", "payment_id", p.ID, "student_id", p.StudentID, "amount", p.Amount)
	return p, nil
}

func (svc *Service) QueryAll(ctx context.Context, filter QueryFilter) ([]Payment, error) {
	filter.Search = core.CleanString(filter.Search)
	return svc.repo.QueryPayments(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, up UpdatePayment) (Payment, error) {
	if err := core.ValidateStruct(up); err != nil {
		return Payment{}, err
	}
	date, err := core.ParseDate(up.Date)
	if err != nil {
		return Payment{}, err
	}
	p, err := svc.repo.GetPaymentByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	p.Amount = up.Amount
	p.Date = date
	p.Method = optional(up.Method)
	p.Notes = optional(up.Notes)
	if p, err = svc.repo.UpdatePayment(ctx, p); err != nil {
		return Payment{}, errors.Wrap(err, "updating payment")
	}
	svc.logger.Info("payment updated", "payment_id", p.ID)
	return p, nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if err := svc.repo.DeletePayment(ctx, id); err != nil {
		return err
	}
	svc.logger.Info("payment deleted", "payment_id", id)
	return nil
}
