package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/bonus"
)

var rewardColumns = []string{"r.id", "r.recommender_id", "r.new_student_id", "r.reward_name", "r.months", "r.award_date"}

type rewardStore struct {
	base
}

var _ bonus.Store = (*rewardStore)(nil)

func NewRewardStore(db core.DBConnector) bonus.Store {
	return &rewardStore{base: newBase(db)}
}

func (s *rewardStore) InsertReward(ctx context.Context, r bonus.Reward) (bonus.Reward, error) {
	id, err := s.insert(ctx, s.sb.Insert("rewards").
		Columns("recommender_id", "new_student_id", "reward_name", "months", "award_date").
		Values(r.RecommenderID, r.NewStudentID, r.Name, r.Months, r.AwardDate))
	if err != nil {
		return bonus.Reward{}, errors.Wrap(err, "inserting reward")
	}
	r.ID = id
	return r, nil
}

// single-statement conditional insert; RETURNING yields no row when the new student was already rewarded
const insertRewardIfAbsentQuery = `
INSERT INTO rewards (recommender_id, new_student_id, reward_name, months, award_date)
SELECT CAST(? AS INTEGER), CAST(? AS INTEGER), CAST(? AS TEXT), CAST(? AS INTEGER), CAST(? AS TEXT)
WHERE NOT EXISTS (SELECT 1 FROM rewards WHERE new_student_id = ?)
RETURNING id`

func (s *rewardStore) InsertRewardIfAbsent(ctx context.Context, r bonus.Reward) (bonus.Reward, error) {
	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.QueryRowxContext(ctx, s.db.Rebind(insertRewardIfAbsentQuery),
			r.RecommenderID, r.NewStudentID, r.Name, r.Months, r.AwardDate.String(), r.NewStudentID,
		).Scan(&r.ID)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bonus.Reward{}, bonus.ErrAlreadyGranted
		}
		return bonus.Reward{}, errors.Wrap(err, "inserting reward")
	}
	return r, nil
}

func (s *rewardStore) GetRewardByRecommender(ctx context.Context, recommenderID int) (bonus.Reward, error) {
	var r bonus.Reward
	err := s.get(ctx, &r, s.sb.Select(rewardColumns...).
		From("rewards r").
		Where(sq.Eq{"r.recommender_id": recommenderID}).
		OrderBy("r.id").
		Limit(1))
	if err != nil {
		return bonus.Reward{}, trapNoRowsErr(err, bonus.ErrNotFound)
	}
	return r, nil
}

// QueryRewards joins the new student (rows whose new student is gone are dropped) and,
// when it still exists, the recommender.
func (s *rewardStore) QueryRewards(ctx context.Context, filter bonus.QueryFilter) ([]bonus.RewardView, error) {
	qb := s.sb.Select(rewardColumns...).
		Column("COALESCE(s1.name, '') AS recommender_name").
		Column("s2.name AS new_student_name").
		From("rewards r").
		Join("students s2 ON r.new_student_id = s2.id").
		LeftJoin("students s1 ON r.recommender_id = s1.id").
		OrderBy("r.id")
	if filter.Recommender != "" {
		qb = qb.Where(ilike("s1.name", filter.Recommender))
	}
	if filter.NewStudent != "" {
		qb = qb.Where(ilike("s2.name", filter.NewStudent))
	}
	if filter.RewardName != "" {
		qb = qb.Where(ilike("r.reward_name", filter.RewardName))
	}

	rewards := make([]bonus.RewardView, 0)
	if err := s.selectAll(ctx, &rewards, qb); err != nil {
		return nil, errors.Wrap(err, "querying rewards")
	}
	return rewards, nil
}

func (s *rewardStore) CountRewardsByNewStudent(ctx context.Context, newStudentID int) (int, error) {
	return s.count(ctx, s.sb.Select("COUNT(*)").From("rewards").Where(sq.Eq{"new_student_id": newStudentID}))
}

func (s *rewardStore) DeleteReward(ctx context.Context, recommenderName, newStudentName string) (int64, error) {
	n, err := s.exec(ctx, s.sb.Delete("rewards").
		Where(sq.Expr("recommender_id IN (SELECT id FROM students WHERE name = ?)", recommenderName)).
		Where(sq.Expr("new_student_id IN (SELECT id FROM students WHERE name = ?)", newStudentName)))
	if err != nil {
		return 0, errors.Wrap(err, "deleting reward")
	}
	return n, nil
}
