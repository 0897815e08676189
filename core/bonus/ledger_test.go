package bonus_test

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/bonus"
	"github.com/trezcool/escondite/core/student"
	emailsvc "github.com/trezcool/escondite/services/email"
	logsvc "github.com/trezcool/escondite/services/logger"
	inmemdb "github.com/trezcool/escondite/storage/database/inmem"
)

type fixture struct {
	ledger   *bonus.Ledger
	students student.Repository
}

func newFixture(t *testing.T, names ...string) fixture {
	t.Helper()
	db := inmemdb.Open()
	f := fixture{
		ledger:   bonus.NewLedger(inmemdb.NewRewardStore(db), logsvc.NewNop()),
		students: inmemdb.NewStudentRepository(db),
	}
	for _, name := range names {
		_, err := f.students.CreateStudent(context.Background(), student.Student{Name: name, Age: 20, Level: "A1"})
		require.NoError(t, err)
	}
	return f
}

func (f fixture) grant(t *testing.T, recommenderID, newStudentID, months int, awardDate string) bonus.Reward {
	t.Helper()
	r, err := f.ledger.Grant(context.Background(), bonus.NewGrant{
		RecommenderID: recommenderID,
		NewStudentID:  newStudentID,
		Months:        months,
		AwardDate:     awardDate,
	})
	require.NoError(t, err)
	return r
}

func TestRewardName(t *testing.T) {
	tests := []struct {
		months int
		want   string
	}{
		{months: 1, want: "Eire"},
		{months: 3, want: "Canada"},
		{months: 6, want: "USA"},
		{months: 2, want: "2 meses"},
		{months: 12, want: "12 meses"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, bonus.RewardName(tt.months))
		})
	}
}

func TestLedger_Grant(t *testing.T) {
	f := newFixture(t, "Ana", "Luis", "Marta")

	tests := []struct {
		name      string
		months    int
		wantName  string
		newStdnt  int
		awardDate string
	}{
		{name: "one month", months: 1, wantName: "Eire", newStdnt: 2, awardDate: "2025-01-01"},
		{name: "three months", months: 3, wantName: "Canada", newStdnt: 3, awardDate: "2030-12-31"},
		{name: "six months", months: 6, wantName: "USA", newStdnt: 2, awardDate: "2019-05-05"},
		{name: "other", months: 4, wantName: "4 meses", newStdnt: 3, awardDate: "2025-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := f.grant(t, 1, tt.newStdnt, tt.months, tt.awardDate)
			assert.NotZero(t, r.ID)
			assert.Equal(t, tt.wantName, r.Name)
			assert.Equal(t, tt.awardDate, r.AwardDate.String())
		})
	}
}

func TestLedger_Grant_Invalid(t *testing.T) {
	f := newFixture(t, "Ana", "Luis")
	ctx := context.Background()

	tests := []struct {
		name    string
		in      bonus.NewGrant
		wantErr error
	}{
		{
			name:    "malformed date",
			in:      bonus.NewGrant{RecommenderID: 1, NewStudentID: 2, Months: 1, AwardDate: "2025-13-01"},
			wantErr: core.ErrInvalidDate,
		},
		{
			name:    "empty date",
			in:      bonus.NewGrant{RecommenderID: 1, NewStudentID: 2, Months: 1},
			wantErr: core.ErrInvalidDate,
		},
		{
			name:    "self referral",
			in:      bonus.NewGrant{RecommenderID: 1, NewStudentID: 1, Months: 1, AwardDate: "2025-01-01"},
			wantErr: bonus.ErrSelfReferral,
		},
		{
			name:    "zero months",
			in:      bonus.NewGrant{RecommenderID: 1, NewStudentID: 2, AwardDate: "2025-01-01"},
			wantErr: core.ErrInvalidInput,
		},
		{
			name:    "missing recommender",
			in:      bonus.NewGrant{NewStudentID: 2, Months: 1, AwardDate: "2025-01-01"},
			wantErr: core.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.Grant(ctx, tt.in)
			assert.True(t, core.IsValidationError(err), "Grant() error = %v", err)
			assert.True(t, errors.Is(err, tt.wantErr), "Grant() error = %v, want %v", err, tt.wantErr)
		})
	}

	granted, err := f.ledger.AlreadyGranted(ctx, 2)
	require.NoError(t, err)
	assert.False(t, granted, "invalid grants must not be stored")
}

func TestLedger_AlreadyGranted(t *testing.T) {
	f := newFixture(t, "Ana", "Luis")
	ctx := context.Background()

	granted, err := f.ledger.AlreadyGranted(ctx, 2)
	require.NoError(t, err)
	assert.False(t, granted)

	f.grant(t, 1, 2, 3, "2025-01-01")

	granted, err = f.ledger.AlreadyGranted(ctx, 2)
	require.NoError(t, err)
	assert.True(t, granted)

	granted, err = f.ledger.AlreadyGranted(ctx, 1)
	require.NoError(t, err)
	assert.False(t, granted, "recommenders are not new students")
}

func TestLedger_Grant_DuplicatesAreStored(t *testing.T) {
	f := newFixture(t, "Ana", "Luis", "Marta")
	ctx := context.Background()

	first := f.grant(t, 1, 2, 1, "2025-01-01")
	second := f.grant(t, 3, 2, 6, "2025-02-01")
	assert.NotEqual(t, first.ID, second.ID)

	rewards, err := f.ledger.List(ctx, bonus.QueryFilter{NewStudent: "luis"})
	require.NoError(t, err)
	assert.Len(t, rewards, 2)
}

func TestLedger_GrantOnce(t *testing.T) {
	f := newFixture(t, "Ana", "Luis", "Marta")
	ctx := context.Background()
	g := bonus.NewGrant{RecommenderID: 1, NewStudentID: 2, Months: 3, AwardDate: "2025-01-01"}

	r, err := f.ledger.GrantOnce(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, "Canada", r.Name)

	g.RecommenderID = 3
	_, err = f.ledger.GrantOnce(ctx, g)
	assert.Equal(t, bonus.ErrAlreadyGranted, err)

	rewards, err := f.ledger.List(ctx, bonus.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, rewards, 1)
}

func TestLedger_IsUnderActiveBonus(t *testing.T) {
	f := newFixture(t, "Ana", "Luis")
	ctx := context.Background()
	f.grant(t, 1, 2, 6, "2025-01-01")

	tests := []struct {
		name      string
		studentID int
		asOf      string
		want      bool
	}{
		{name: "inside period", studentID: 1, asOf: "2025-06-01", want: true},
		{name: "award day", studentID: 1, asOf: "2025-01-01", want: true},
		{name: "before award", studentID: 1, asOf: "2024-12-01", want: true},
		{name: "last covered day", studentID: 1, asOf: "2025-06-30", want: true},
		{name: "expiry day", studentID: 1, asOf: "2025-07-01", want: false},
		{name: "after period", studentID: 1, asOf: "2025-08-01", want: false},
		{name: "new student is not covered", studentID: 2, asOf: "2025-06-01", want: false},
		{name: "unknown student", studentID: 99, asOf: "2025-06-01", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ledger.IsUnderActiveBonus(ctx, tt.studentID, core.MustParseDate(tt.asOf))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLedger_IsUnderActiveBonus_FirstRewardWins(t *testing.T) {
	f := newFixture(t, "Ana", "Luis", "Marta")
	ctx := context.Background()
	f.grant(t, 1, 2, 1, "2025-01-01") // expires 2025-02-01
	f.grant(t, 1, 3, 6, "2025-01-15")

	got, err := f.ledger.IsUnderActiveBonus(ctx, 1, core.MustParseDate("2025-03-01"))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestLedger_IsUnderActiveBonus_MonthClamp(t *testing.T) {
	f := newFixture(t, "Ana", "Luis")
	ctx := context.Background()
	r := f.grant(t, 1, 2, 1, "2024-01-31")
	assert.Equal(t, "2024-02-29", r.ExpiryDate().String())

	active, err := f.ledger.IsUnderActiveBonus(ctx, 1, core.MustParseDate("2024-02-28"))
	require.NoError(t, err)
	assert.True(t, active)

	active, err = f.ledger.IsUnderActiveBonus(ctx, 1, core.MustParseDate("2024-02-29"))
	require.NoError(t, err)
	assert.False(t, active)
}

func TestLedger_ExpiringWithin(t *testing.T) {
	f := newFixture(t, "Ana", "Luis", "Marta", "Pedro", "Sara", "Juan")
	ctx := context.Background()
	today := core.MustParseDate("2025-03-15")

	f.grant(t, 1, 2, 1, "2025-02-15") // expires today
	f.grant(t, 1, 3, 1, "2025-02-14") // expired yesterday
	f.grant(t, 1, 4, 3, "2024-12-22") // expires 2025-03-22, in 7 days
	f.grant(t, 1, 5, 3, "2024-12-23") // expires in 8 days
	f.grant(t, 2, 6, 6, "2024-09-18") // expires 2025-03-18

	got, err := f.ledger.ExpiringWithin(ctx, 7, today)
	require.NoError(t, err)
	want := []bonus.ExpiringBonus{
		{StudentName: "Luis", RecommenderName: "Ana", ExpiryDate: today, DaysLeft: 0},
		{StudentName: "Pedro", RecommenderName: "Ana", ExpiryDate: core.MustParseDate("2025-03-22"), DaysLeft: 7},
		{StudentName: "Juan", RecommenderName: "Luis", ExpiryDate: core.MustParseDate("2025-03-18"), DaysLeft: 3},
	}
	assert.Equal(t, want, got)

	got, err = f.ledger.ExpiringWithin(ctx, 0, today)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Luis", got[0].StudentName)

	_, err = f.ledger.ExpiringWithin(ctx, -1, today)
	assert.True(t, core.IsValidationError(err))
}

func TestLedger_ExpiringWithin_RelativeToNow(t *testing.T) {
	defer func(orig func() time.Time) { bonus.NowFunc = orig }(bonus.NowFunc)
	bonus.NowFunc = func() time.Time { return time.Date(2025, time.May, 20, 10, 30, 0, 0, time.Local) }

	f := newFixture(t, "Ana", "Luis")
	ctx := context.Background()
	today := bonus.Today()
	assert.Equal(t, "2025-05-20", today.String())

	f.grant(t, 1, 2, 1, today.AddMonths(-1).String())

	got, err := f.ledger.ExpiringWithin(ctx, 7, today)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].DaysLeft)
}

func TestLedger_ExpiringWithin_DeletedStudent(t *testing.T) {
	f := newFixture(t, "Ana", "Luis")
	ctx := context.Background()
	f.grant(t, 1, 2, 1, "2025-01-01")
	require.NoError(t, f.students.DeleteStudent(ctx, 2))

	got, err := f.ledger.ExpiringWithin(ctx, 31, core.MustParseDate("2025-01-15"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLedger_List(t *testing.T) {
	f := newFixture(t, "Ana", "Luis", "Marta")
	ctx := context.Background()
	f.grant(t, 1, 2, 1, "2025-01-01")
	f.grant(t, 2, 3, 6, "2025-02-01")

	tests := []struct {
		name   string
		filter bonus.QueryFilter
		want   []string // new student names
	}{
		{name: "all", want: []string{"Luis", "Marta"}},
		{name: "by recommender", filter: bonus.QueryFilter{Recommender: " ANA "}, want: []string{"Luis"}},
		{name: "by reward", filter: bonus.QueryFilter{RewardName: "us"}, want: []string{"Marta"}},
		{name: "no match", filter: bonus.QueryFilter{NewStudent: "pedro"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rewards, err := f.ledger.List(ctx, tt.filter)
			require.NoError(t, err)
			got := make([]string, 0, len(rewards))
			for _, r := range rewards {
				got = append(got, r.NewStudentName)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLedger_Revoke(t *testing.T) {
	f := newFixture(t, "Ana", "Luis")
	ctx := context.Background()
	f.grant(t, 1, 2, 3, "2025-01-01")

	assert.Equal(t, bonus.ErrNotFound, f.ledger.Revoke(ctx, "Luis", "Ana"))
	require.NoError(t, f.ledger.Revoke(ctx, "Ana", "Luis"))

	granted, err := f.ledger.AlreadyGranted(ctx, 2)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, bonus.ErrNotFound, f.ledger.Revoke(ctx, "Ana", "Luis"))
}

func TestLedger_NotifyExpiring(t *testing.T) {
	f := newFixture(t, "Ana", "Luis")
	ctx := context.Background()
	mailer := emailsvc.NewConsoleServiceMock(&core.Config{AppName: "Escondite"})
	office := mail.Address{Address: "office@escondite.test"}

	report, err := f.ledger.NotifyExpiring(ctx, mailer, office, 7, core.MustParseDate("2025-03-15"))
	require.NoError(t, err)
	assert.Empty(t, report.Bonuses)
	assert.Empty(t, mailer.SentMessages)

	f.grant(t, 1, 2, 1, "2025-02-20")
	report, err = f.ledger.NotifyExpiring(ctx, mailer, office, 7, core.MustParseDate("2025-03-15"))
	require.NoError(t, err)
	require.Len(t, report.Bonuses, 1)
	require.Len(t, mailer.SentMessages, 1)
	sent := mailer.SentMessages[0]
	assert.Equal(t, []mail.Address{office}, sent.To)
	assert.Contains(t, sent.TextContent, "- Luis (referred by Ana): ends 2025-03-20, 5 days left")
}
