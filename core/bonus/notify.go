package bonus

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
)

const expiringBonusesTemplate = "expiring_bonuses"

// ExpiryReport is the data of the expiring-bonus email.
type ExpiryReport struct {
	WindowDays int
	AsOf       core.Date
	Bonuses    []ExpiringBonus
}

func (r ExpiryReport) Message(to ...mail.Address) *core.EmailMessage {
	return &core.EmailMessage{
		To:           to,
		Subject:      "Free-bonus periods about to end",
		TemplateName: expiringBonusesTemplate,
		TemplateData: r,
	}
}

// NotifyExpiring mails the bonuses ending within windowDays of asOf to the office.
// Nothing is sent when no bonus is about to end.
func (l *Ledger) NotifyExpiring(ctx context.Context, mailer core.EmailService, office mail.Address, windowDays int, asOf core.Date) (ExpiryReport, error) {
	bonuses, err := l.ExpiringWithin(ctx, windowDays, asOf)
	if err != nil {
		return ExpiryReport{}, err
	}
	report := ExpiryReport{WindowDays: windowDays, AsOf: asOf, Bonuses: bonuses}
	if len(bonuses) == 0 {
		return report, nil
	}
	if err = mailer.SendMessages(ctx, report.Message(office)); err != nil {
		return ExpiryReport{}, errors.Wrap(err, "sending expiring bonuses report")
	}
	l.logger.Info("expiring bonuses report sent", "count", len(bonuses), "to", office.Address)
	return report, nil
}
