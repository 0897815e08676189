package inmemdb

import (
	"context"

	"github.com/trezcool/escondite/core/bonus"
)

type rewardStore struct {
	db       *rewardTable
	students *studentTable
}

var _ bonus.Store = (*rewardStore)(nil)

func NewRewardStore(db *DB) bonus.Store {
	return &rewardStore{db: db.reward, students: db.student}
}

func (s *rewardStore) insert(r bonus.Reward) bonus.Reward {
	s.db.pk++
	r.ID = s.db.pk
	s.db.rows = append(s.db.rows, r)
	return r
}

func (s *rewardStore) InsertReward(_ context.Context, r bonus.Reward) (bonus.Reward, error) {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()
	return s.insert(r), nil
}

func (s *rewardStore) InsertRewardIfAbsent(_ context.Context, r bonus.Reward) (bonus.Reward, error) {
	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	for _, row := range s.db.rows {
		if row.NewStudentID == r.NewStudentID {
			return bonus.Reward{}, bonus.ErrAlreadyGranted
		}
	}
	return s.insert(r), nil
}

func (s *rewardStore) GetRewardByRecommender(_ context.Context, recommenderID int) (bonus.Reward, error) {
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()

	for _, row := range s.db.rows {
		if row.RecommenderID == recommenderID {
			return row, nil
		}
	}
	return bonus.Reward{}, bonus.ErrNotFound
}

// QueryRewards skips rewards whose new student no longer exists; a missing
// recommender yields an empty recommender name.
func (s *rewardStore) QueryRewards(_ context.Context, filter bonus.QueryFilter) ([]bonus.RewardView, error) {
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()

	views := make([]bonus.RewardView, 0, len(s.db.rows))
	for _, row := range s.db.rows {
		newName, ok := s.students.nameOf(row.NewStudentID)
		if !ok {
			continue
		}
		recName, _ := s.students.nameOf(row.RecommenderID)
		if filter.Recommender != "" && !containsFold(recName, filter.Recommender) {
			continue
		}
		if filter.NewStudent != "" && !containsFold(newName, filter.NewStudent) {
			continue
		}
		if filter.RewardName != "" && !containsFold(row.Name, filter.RewardName) {
			continue
		}
		views = append(views, bonus.RewardView{Reward: row, RecommenderName: recName, NewStudentName: newName})
	}
	return views, nil
}

func (s *rewardStore) CountRewardsByNewStudent(_ context.Context, newStudentID int) (int, error) {
	s.db.mutex.RLock()
	defer s.db.mutex.RUnlock()

	var n int
	for _, row := range s.db.rows {
		if row.NewStudentID == newStudentID {
			n++
		}
	}
	return n, nil
}

func (s *rewardStore) DeleteReward(_ context.Context, recommenderName, newStudentName string) (int64, error) {
	recID, ok := s.students.idOf(recommenderName)
	if !ok {
		return 0, nil
	}
	newID, ok := s.students.idOf(newStudentName)
	if !ok {
		return 0, nil
	}

	s.db.mutex.Lock()
	defer s.db.mutex.Unlock()

	kept := s.db.rows[:0]
	var n int64
	for _, row := range s.db.rows {
		if row.RecommenderID == recID && row.NewStudentID == newID {
			n++
			continue
		}
		kept = append(kept, row)
	}
	s.db.rows = kept
	return n, nil
}
