package main

import (
	"context"
	"strconv"

	"github.com/trezcool/escondite/core"
	"github.com/trezcool/escondite/core/bonus"
	exportsvc "github.com/trezcool/escondite/services/export"
)

type activeStatus struct {
	Student string    `json:"student" yaml:"student"`
	AsOf    core.Date `json:"as_of" yaml:"as_of"`
	Active  bool      `json:"active" yaml:"active"`
}

func (cli *commandLine) bonus(ctx context.Context, args []string) error {
	sub, args, err := cli.subcommand(args, "bonus grant|list|revoke|active|expiring|notify|export [flags]")
	if err != nil {
		return err
	}
	svc, err := cli.services()
	if err != nil {
		return err
	}

	switch sub {
	case "grant":
		fs := cli.flagSet("bonus grant")
		recommender := fs.String("recommender", "", "name of the student who made the referral")
		newStudent := fs.String("new", "", "name of the referred student")
		months := fs.Int("months", 0, "bonus length in months: 1, 3 or 6")
		date := fs.String("date", bonus.Today().String(), "first day of the bonus, YYYY-MM-DD")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *recommender, *newStudent); err != nil {
			return err
		}
		if !bonus.IsAllowedMonths(*months) {
			return core.NewValidationError(core.ErrInvalidInput, core.FieldError{
				Field: "months",
				Error: "must be one of 1, 3 or 6",
			})
		}
		rec, err := svc.Students.GetByName(ctx, *recommender)
		if err != nil {
			return err
		}
		ns, err := svc.Students.GetByName(ctx, *newStudent)
		if err != nil {
			return err
		}
		r, err := svc.Ledger.GrantOnce(ctx, bonus.NewGrant{
			RecommenderID: rec.ID,
			NewStudentID:  ns.ID,
			Months:        *months,
			AwardDate:     *date,
		})
		if err != nil {
			return err
		}
		view := bonus.RewardView{Reward: r, RecommenderName: rec.Name, NewStudentName: ns.Name}
		return cli.render(view, exportsvc.Rewards([]bonus.RewardView{view}))

	case "list", "export":
		fs := cli.flagSet("bonus " + sub)
		recommender := fs.String("recommender", "", "case-insensitive match on the recommender name")
		newStudent := fs.String("new", "", "case-insensitive match on the referred student name")
		reward := fs.String("reward", "", "case-insensitive match on the reward name")
		to := fs.String("to", "", "export file (.csv or .xlsx)")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if sub == "export" {
			if err = required(fs, *to); err != nil {
				return err
			}
		}
		rewards, err := svc.Ledger.List(ctx, bonus.QueryFilter{
			Recommender: *recommender,
			NewStudent:  *newStudent,
			RewardName:  *reward,
		})
		if err != nil {
			return err
		}
		if sub == "export" {
			return cli.export(*to, exportsvc.Rewards(rewards), len(rewards))
		}
		return cli.render(rewards, exportsvc.Rewards(rewards))

	case "revoke":
		fs := cli.flagSet("bonus revoke")
		recommender := fs.String("recommender", "", "name of the recommender")
		newStudent := fs.String("new", "", "name of the referred student")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *recommender, *newStudent); err != nil {
			return err
		}
		if err = svc.Ledger.Revoke(ctx, *recommender, *newStudent); err != nil {
			return err
		}
		cli.printf("reward of %s for referring %s revoked\n", *recommender, *newStudent)
		return nil

	case "active":
		fs := cli.flagSet("bonus active")
		name := fs.String("student", "", "name of the student")
		date := fs.String("date", bonus.Today().String(), "day to check, YYYY-MM-DD")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *name); err != nil {
			return err
		}
		asOf, err := core.ParseDate(*date)
		if err != nil {
			return err
		}
		s, err := svc.Students.GetByName(ctx, *name)
		if err != nil {
			return err
		}
		active, err := svc.Ledger.IsUnderActiveBonus(ctx, s.ID, asOf)
		if err != nil {
			return err
		}
		status := activeStatus{Student: s.Name, AsOf: asOf, Active: active}
		return cli.render(status, exportsvc.Table{
			Headers: []string{"Alumno", "Fecha", "Bono activo"},
			Rows:    [][]string{{s.Name, asOf.String(), strconv.FormatBool(active)}},
		})

	case "expiring":
		fs := cli.flagSet("bonus expiring")
		days := fs.Int("days", cli.conf.Bonus.ExpiryWindowDays, "window in days")
		date := fs.String("date", bonus.Today().String(), "reference day, YYYY-MM-DD")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		asOf, err := core.ParseDate(*date)
		if err != nil {
			return err
		}
		bonuses, err := svc.Ledger.ExpiringWithin(ctx, *days, asOf)
		if err != nil {
			return err
		}
		return cli.render(bonuses, expiringTable(bonuses))

	case "notify":
		fs := cli.flagSet("bonus notify")
		days := fs.Int("days", cli.conf.Bonus.ExpiryWindowDays, "window in days")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		office := cli.conf.Email.OfficeAddress
		if office.Address == "" {
			return core.NewValidationError(core.ErrInvalidInput, core.FieldError{
				Field: "email.officeAddress",
				Error: "must be set to send notifications",
			})
		}
		report, err := svc.Ledger.NotifyExpiring(ctx, svc.Mailer, office, *days, bonus.Today())
		if err != nil {
			return err
		}
		if len(report.Bonuses) == 0 {
			cli.printf("no bonus ends within %d days, nothing sent\n", *days)
			return nil
		}
		cli.printf("%d expiring bonuses sent to %s\n", len(report.Bonuses), office.Address)
		return nil

	default:
		return cli.unknownSubcommand("bonus", sub)
	}
}
