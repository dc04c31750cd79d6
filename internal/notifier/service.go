package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/osinbeats/beatstore-backend/pkg/config"
	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
	"github.com/osinbeats/beatstore-backend/pkg/logger"
)

// DeliveryEmail carries everything the delivery template needs.
type DeliveryEmail struct {
	To           string
	CustomerName string
	BeatTitle    string
	LicenseLabel string
	DownloadLink string
}

// Service sends customer-facing mail. Failures are meant to be logged by
// callers, never surfaced to the customer.
type Service interface {
	SendDeliveryEmail(ctx context.Context, email DeliveryEmail) error
}

type mailSender interface {
	SendWithContext(ctx context.Context, message *mail.SGMailV3) (*rest.Response, error)
}

type service struct {
	sender   mailSender
	fromAddr string
	fromName string
	logg     *logger.Logger
}

// NewService builds the notifier over Sendgrid.
func NewService(cfg config.SendgridConfig, logg *logger.Logger) (Service, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sendgrid api key required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{
		sender:   sendgrid.NewSendClient(cfg.APIKey),
		fromAddr: cfg.DefaultFrom,
		fromName: cfg.FromName,
		logg:     logg,
	}, nil
}

func (s *service) SendDeliveryEmail(ctx context.Context, email DeliveryEmail) error {
	if email.To == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient email required")
	}
	if email.DownloadLink == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "download link required")
	}

	message := buildDeliveryMessage(s.fromAddr, s.fromName, email)
	resp, err := s.sender.SendWithContext(ctx, message)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send delivery email")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("sendgrid rejected delivery email (status %d)", resp.StatusCode))
	}

	s.logg.Info(s.logg.WithField(ctx, "recipient", email.To), "delivery email sent")
	return nil
}

func buildDeliveryMessage(fromAddr, fromName string, email DeliveryEmail) *mail.SGMailV3 {
	greeting := "Hey"
	if email.CustomerName != "" {
		greeting = "Hey " + email.CustomerName
	}

	subject := fmt.Sprintf("Your files for %q are ready", email.BeatTitle)
	plain := fmt.Sprintf(
		"%s,\n\nThanks for your purchase! Your %s for %q is ready.\n\nDownload your files here:\n%s\n\nKeep this link safe - it is your access to the files.\n\nOsin Beats",
		greeting, email.LicenseLabel, email.BeatTitle, email.DownloadLink,
	)
	html := fmt.Sprintf(
		`<p>%s,</p><p>Thanks for your purchase! Your <strong>%s</strong> for <strong>%s</strong> is ready.</p><p><a href="%s">Download your files</a></p><p>Keep this link safe &mdash; it is your access to the files.</p><p>Osin Beats</p>`,
		greeting, email.LicenseLabel, email.BeatTitle, email.DownloadLink,
	)

	from := mail.NewEmail(fromName, fromAddr)
	to := mail.NewEmail(email.CustomerName, email.To)
	return mail.NewSingleEmail(from, subject, to, plain, html)
}
