package main

import (
	"context"

	"github.com/trezcool/escondite/core/bonus"
	"github.com/trezcool/escondite/core/payment"
	exportsvc "github.com/trezcool/escondite/services/export"
)

func (cli *commandLine) payment(ctx context.Context, args []string) error {
	sub, args, err := cli.subcommand(args, "payment add|list|edit|delete|export [flags]")
	if err != nil {
		return err
	}
	svc, err := cli.services()
	if err != nil {
		return err
	}

	switch sub {
	case "add":
		fs := cli.flagSet("payment add")
		name := fs.String("student", "", "name of the paying student")
		amount := fs.Float64("amount", 0, "amount paid")
		date := fs.String("date", bonus.Today().String(), "payment day, YYYY-MM-DD")
		method := fs.String("method", "", "payment method (cash, card, transfer, ...)")
		notes := fs.String("notes", "", "free notes")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if err = required(fs, *name); err != nil {
			return err
		}
		s, err := svc.Students.GetByName(ctx, *name)
		if err != nil {
			return err
		}
		p, err := svc.Payments.Record(ctx, payment.NewPayment{
			StudentID: s.ID,
			Amount:    *amount,
			Date:      *date,
			Method:    *method,
			Notes:     *notes,
		})
		if err != nil {
			return err
		}
		return cli.render(p, exportsvc.Payments([]payment.Payment{p}))

	case "list", "export":
		fs := cli.flagSet("payment " + sub)
		search := fs.String("search", "", "case-insensitive match on student name or method")
		name := fs.String("student", "", "only payments of this student")
		to := fs.String("to", "", "export file (.csv or .xlsx)")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if sub == "export" {
			if err = required(fs, *to); err != nil {
				return err
			}
		}
		filter := payment.QueryFilter{Search: *search}
		if *name != "" {
			s, err := svc.Students.GetByName(ctx, *name)
			if err != nil {
				return err
			}
			filter.StudentID = s.ID
		}
		payments, err := svc.Payments.QueryAll(ctx, filter)
		if err != nil {
			return err
		}
		if sub == "export" {
			return cli.export(*to, exportsvc.Payments(payments), len(payments))
		}
		return cli.render(payments, exportsvc.Payments(payments))

	case "edit":
		fs := cli.flagSet("payment edit")
		id := fs.Int("id", 0, "payment id")
		amount := fs.Float64("amount", 0, "new amount")
		date := fs.String("date", "", "new day, YYYY-MM-DD")
		method := fs.String("method", "", "new method")
		notes := fs.String("notes", "", "new notes")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if *id <= 0 {
			fs.Usage()
			return errHelp
		}
		orig, err := svc.Payments.GetByID(ctx, *id)
		if err != nil {
			return err
		}
		up := payment.UpdatePayment{Amount: orig.Amount, Date: orig.Date.String(), Method: orig.Method.String, Notes: orig.Notes.String}
		if *amount != 0 {
			up.Amount = *amount
		}
		if *date != "" {
			up.Date = *date
		}
		if *method != "" {
			up.Method = *method
		}
		if *notes != "" {
			up.Notes = *notes
		}
		p, err := svc.Payments.Update(ctx, orig.ID, up)
		if err != nil {
			return err
		}
		return cli.render(p, exportsvc.Payments([]payment.Payment{p}))

	case "delete":
		fs := cli.flagSet("payment delete")
		id := fs.Int("id", 0, "payment id")
		if err = cli.parse(fs, args); err != nil {
			return err
		}
		if *id <= 0 {
			fs.Usage()
			return errHelp
		}
		if err = svc.Payments.Delete(ctx, *id); err != nil {
			return err
		}
		cli.printf("payment %d deleted\n", *id)
		return nil

	default:
		return cli.unknownSubcommand("payment", sub)
	}
}
