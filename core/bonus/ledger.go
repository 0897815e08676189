package bonus

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
)

// NowFunc returns the current time; Today derives the calendar day from it.
var NowFunc = time.Now // mockable

// Today returns the current calendar day in local time.
func Today() core.Date {
	return core.DateOf(NowFunc())
}

// Store is the record store consumed by the Ledger.
// Implementations acquire and release their connection within each call.
type Store interface {
	// InsertReward appends r unconditionally and returns it with its ID set.
	InsertReward(ctx context.Context, r Reward) (Reward, error)
	// InsertRewardIfAbsent appends r only if no reward exists for r.NewStudentID,
	// in a single store operation. Returns ErrAlreadyGranted otherwise.
	InsertRewardIfAbsent(ctx context.Context, r Reward) (Reward, error)
	// GetRewardByRecommender returns the first reward granted to recommenderID, or ErrNotFound.
	GetRewardByRecommender(ctx context.Context, recommenderID int) (Reward, error)
	// QueryRewards returns all rewards joined with both student names, in insertion order.
	QueryRewards(ctx context.Context, filter QueryFilter) ([]RewardView, error)
	CountRewardsByNewStudent(ctx context.Context, newStudentID int) (int, error)
	// DeleteReward removes the rewards matching the name pair and returns how many were removed.
	DeleteReward(ctx context.Context, recommenderName, newStudentName string) (int64, error)
}

// Ledger answers whether a student is covered by an active referral bonus and
// which bonuses are about to expire.
type Ledger struct {
	store  Store
	logger core.Logger
}

func NewLedger(store Store, logger core.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// Grant records a referral bonus. Duplicate grants for the same new student are
// not rejected; callers check AlreadyGranted first, or use GrantOnce.
func (l *Ledger) Grant(ctx context.Context, g NewGrant) (Reward, error) {
	r, err := g.validate()
	if err != nil {
		return Reward{}, err
	}
	r, err = l.store.InsertReward(ctx, r)
	if err != nil {
		return Reward{}, errors.Wrap(err, "granting reward")
	}
	l.logGranted(r)
	return r, nil
}

// GrantOnce is Grant with the one-reward-per-new-student rule enforced atomically by the store.
func (l *Ledger) GrantOnce(ctx context.Context, g NewGrant) (Reward, error) {
	r, err := g.validate()
	if err != nil {
		return Reward{}, err
	}
	r, err = l.store.InsertRewardIfAbsent(ctx, r)
	if err != nil {
		if errors.Is(err, ErrAlreadyGranted) {
			return Reward{}, ErrAlreadyGranted
		}
		return Reward{}, errors.Wrap(err, "granting reward")
	}
	l.logGranted(r)
	return r, nil
}

func (l *Ledger) logGranted(r Reward) {
	l.logger.Info("reward granted",
		"reward_id", r.ID,
		"recommender_id", r.RecommenderID,
		"new_student_id", r.NewStudentID,
		"reward", r.Name,
		"award_date", r.AwardDate.String(),
	)
}

// AlreadyGranted reports whether any reward exists for newStudentID.
func (l *Ledger) AlreadyGranted(ctx context.Context, newStudentID int) (bool, error) {
	n, err := l.store.CountRewardsByNewStudent(ctx, newStudentID)
	if err != nil {
		return false, errors.Wrap(err, "counting rewards")
	}
	return n > 0, nil
}

// IsUnderActiveBonus reports whether studentID, as a recommender, is covered by a
// bonus on asOf. Only the first reward granted to the recommender is considered.
func (l *Ledger) IsUnderActiveBonus(ctx context.Context, studentID int, asOf core.Date) (bool, error) {
	r, err := l.store.GetRewardByRecommender(ctx, studentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "looking up reward")
	}
	return r.IsActive(asOf), nil
}

// ExpiringWithin lists the bonuses whose expiry falls between asOf and asOf+windowDays, both inclusive.
func (l *Ledger) ExpiringWithin(ctx context.Context, windowDays int, asOf core.Date) ([]ExpiringBonus, error) {
	if windowDays < 0 {
		return nil, core.NewValidationError(core.ErrInvalidInput, core.FieldError{
			Field: "window_days",
			Error: "must be 0 or greater",
		})
	}
	rewards, err := l.store.QueryRewards(ctx, QueryFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "querying rewards")
	}

	expiring := make([]ExpiringBonus, 0)
	for _, r := range rewards {
		expiry := r.ExpiryDate()
		daysLeft := asOf.DaysUntil(expiry)
		if daysLeft < 0 || daysLeft > windowDays {
			continue
		}
		expiring = append(expiring, ExpiringBonus{
			StudentName:     r.NewStudentName,
			RecommenderName: r.RecommenderName,
			ExpiryDate:      expiry,
			DaysLeft:        daysLeft,
		})
	}
	return expiring, nil
}

// List returns all rewards joined with student names.
func (l *Ledger) List(ctx context.Context, filter QueryFilter) ([]RewardView, error) {
	filter.Recommender = core.CleanString(filter.Recommender)
	filter.NewStudent = core.CleanString(filter.NewStudent)
	filter.RewardName = core.CleanString(filter.RewardName)
	rewards, err := l.store.QueryRewards(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying rewards")
	}
	return rewards, nil
}

// Revoke deletes the reward granted to newStudentName on the referral of recommenderName.
func (l *Ledger) Revoke(ctx context.Context, recommenderName, newStudentName string) error {
	recommenderName = core.CleanString(recommenderName)
	newStudentName = core.CleanString(newStudentName)
	n, err := l.store.DeleteReward(ctx, recommenderName, newStudentName)
	if err != nil {
		return errors.Wrap(err, "deleting reward")
	}
	if n == 0 {
		return ErrNotFound
	}
	l.logger.Info("reward revoked", "recommender", recommenderName, "new_student", newStudentName, "deleted", n)
	return nil
}
