package bonus

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
)

var (
	ErrNotFound       = errors.New("reward not found")
	ErrAlreadyGranted = errors.New("a reward has already been granted for this new student")
	ErrSelfReferral   = errors.New("a student cannot refer themselves")
)

// AllowedMonths are the bonus lengths offered to operators. The store accepts any positive value.
var AllowedMonths = []int{1, 3, 6}

// RewardName derives the symbolic name of a bonus from its length in months.
func RewardName(months int) string {
	switch months {
	case 1:
		return "Eire"
	case 3:
		return "Canada"
	case 6:
		return "USA"
	default:
		return strconv.Itoa(months) + " meses"
	}
}

// IsAllowedMonths reports whether months is one of AllowedMonths.
func IsAllowedMonths(months int) bool {
	for _, m := range AllowedMonths {
		if m == months {
			return true
		}
	}
	return false
}

// Reward is one referral bonus grant: RecommenderID brought in NewStudentID and
// is covered for Months calendar months starting at AwardDate.
type Reward struct {
	ID            int       `db:"id" json:"id" yaml:"id"`
	RecommenderID int       `db:"recommender_id" json:"recommender_id" yaml:"recommender_id"`
	NewStudentID  int       `db:"new_student_id" json:"new_student_id" yaml:"new_student_id"`
	Name          string    `db:"reward_name" json:"reward_name" yaml:"reward_name"`
	Months        int       `db:"months" json:"months" yaml:"months"`
	AwardDate     core.Date `db:"award_date" json:"award_date" yaml:"award_date"`
}

// ExpiryDate is AwardDate plus Months calendar months, clamped to the end of the target month.
func (r Reward) ExpiryDate() core.Date {
	return r.AwardDate.AddMonths(r.Months)
}

// IsActive reports whether the bonus still covers asOf.
func (r Reward) IsActive(asOf core.Date) bool {
	return asOf.Before(r.ExpiryDate())
}

// RewardView is a Reward joined with the names of both students.
type RewardView struct {
	Reward          `yaml:",inline"`
	RecommenderName string `db:"recommender_name" json:"recommender_name" yaml:"recommender_name"`
	NewStudentName  string `db:"new_student_name" json:"new_student_name" yaml:"new_student_name"`
}

// ExpiringBonus is one line of the expiring-bonus report.
// StudentName is the referred (new) student.
type ExpiringBonus struct {
	StudentName     string    `json:"student_name" yaml:"student_name"`
	RecommenderName string    `json:"recommender_name" yaml:"recommender_name"`
	ExpiryDate      core.Date `json:"expiry_date" yaml:"expiry_date"`
	DaysLeft        int       `json:"days_left" yaml:"days_left"`
}

// QueryFilter narrows List results with case-insensitive substring matches. Empty fields match everything.
type QueryFilter struct {
	Recommender string
	NewStudent  string
	RewardName  string
}

// NewGrant holds the raw input of a grant, as typed by the operator.
type NewGrant struct {
	RecommenderID int    `json:"recommender_id" validate:"required,gt=0"`
	NewStudentID  int    `json:"new_student_id" validate:"required,gt=0"`
	Months        int    `json:"months" validate:"required,gt=0"`
	AwardDate     string `json:"award_date"`
}

func (g NewGrant) validate() (Reward, error) {
	if g.RecommenderID > 0 && g.RecommenderID == g.NewStudentID {
		return Reward{}, core.NewValidationError(ErrSelfReferral, core.FieldError{
			Field: "new_student_id",
			Error: ErrSelfReferral.Error(),
		})
	}
	if err := core.ValidateStruct(g); err != nil {
		return Reward{}, err
	}
	awardDate, err := core.ParseDate(g.AwardDate)
	if err != nil {
		return Reward{}, core.NewValidationError(err, core.FieldError{
			Field: "award_date",
			Error: core.ErrInvalidDate.Error(),
		})
	}
	return Reward{
		RecommenderID: g.RecommenderID,
		NewStudentID:  g.NewStudentID,
		Name:          RewardName(g.Months),
		Months:        g.Months,
		AwardDate:     awardDate,
	}, nil
}
