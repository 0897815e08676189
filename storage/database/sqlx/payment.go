package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/payment"
)

type paymentRepository struct {
	base
}

var _ payment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db core.DBConnector) payment.Repository {
	return &paymentRepository{base: newBase(db)}
}

// payments of removed students are not listed
func (repo *paymentRepository) selectPayments() sq.SelectBuilder {
	return repo.sb.Select("p.id", "p.student_id", "p.amount", "p.date", "p.method", "p.notes", "s.name AS student_name").
		From("payments p").
		Join("students s ON p.student_id = s.id").
		OrderBy("p.date DESC", "p.id DESC")
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	id, err := repo.insert(ctx, repo.sb.Insert("payments").
		Columns("student_id", "amount", "date", "method", "notes").
		Values(p.StudentID, p.Amount, p.Date, p.Method, p.Notes))
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return repo.GetPaymentByID(ctx, id)
}

func (repo *paymentRepository) QueryPayments(ctx context.Context, filter payment.QueryFilter) ([]payment.Payment, error) {
	qb := repo.selectPayments()
	if filter.Search != "" {
		qb = qb.Where(sq.Or{ilike("s.name", filter.Search), ilike("COALESCE(p.method, '')", filter.Search)})
	}
	if filter.StudentID > 0 {
		qb = qb.Where(sq.Eq{"p.student_id": filter.StudentID})
	}
	payments := make([]payment.Payment, 0)
	if err := repo.selectAll(ctx, &payments, qb); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	return payments, nil
}

func (repo *paymentRepository) GetPaymentByID(ctx context.Context, id int) (payment.Payment, error) {
	var p payment.Payment
	if err := repo.get(ctx, &p, repo.selectPayments().Where(sq.Eq{"p.id": id})); err != nil {
		return payment.Payment{}, trapNoRowsErr(err, payment.ErrNotFound)
	}
	return p, nil
}

func (repo *paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	n, err := repo.exec(ctx, repo.sb.Update("payments").
		Set("amount", p.Amount).
		Set("date", p.Date).
		Set("method", p.Method).
		Set("notes", p.Notes).
		Where(sq.Eq{"id": p.ID}))
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return repo.GetPaymentByID(ctx, p.ID)
}

func (repo *paymentRepository) DeletePayment(ctx context.Context, id int) error {
	n, err := repo.exec(ctx, repo.sb.Delete("payments").Where(sq.Eq{"id": id}))
	if err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	if n == 0 {
		return payment.ErrNotFound
	}
	return nil
}
