// Package managers holds the account lifecycle and the collaborators it drives: credential hashing,
// session tokens, outbound mail and the storage handle.
package managers

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"
)

// mailSendTimeout bounds a single Mailgun call. Sends run detached from the request,
// so without it a hung provider would block shutdown in AccountManager.Wait.
const mailSendTimeout = 5 * time.Second

// MailMgr delivers account notifications.
type MailMgr interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
	SendActivationMail(ctx context.Context, email, username, activationCode string) error
	SendPasswordResetMail(ctx context.Context, email, username, resetCode string, validFor time.Duration) error
}

// mailSender is the part of the Mailgun client the manager uses.
type mailSender interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// MailManager formats mails with Hermes and sends them through Mailgun.
// Outside production nothing is sent.
type MailManager struct {
	Hermes     *hermes.Hermes
	Mailgun    mailSender
	from       string
	production bool
}

func NewMailManager(domain, apiKey, from string, production bool) *MailManager {
	log.Info("Initializing mail manager")
	if !production {
		log.Info("Running in development mode, email will not be sent to users")
	}

	mailgunInstance := mailgun.NewMailgun(domain, apiKey)
	mailgunInstance.SetAPIBase(mailgun.APIBaseEU)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        "Tamuroo",
				Link:        "https://tamuroo.com/",
				Copyright:   "© Tamuroo",
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Mailgun:    mailgunInstance,
		from:       from,
		production: production,
	}
	log.Info("Initialized mail manager")
	return mm
}

func (mm *MailManager) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	if !mm.production {
		log.WithFields(log.Fields{"to": to, "subject": subject}).Info("Skipping mail in development mode")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, mailSendTimeout)
	defer cancel()

	message := mm.Mailgun.NewMessage(mm.from, subject, "", to)
	message.SetHtml(htmlBody)
	if _, _, err := mm.Mailgun.Send(ctx, message); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	log.Debug("Mail sent to ", to)
	return nil
}

func (mm *MailManager) SendActivationMail(ctx context.Context, email, username, activationCode string) error {
	body, err := mm.Hermes.GenerateHTML(hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"Thank you for registering to Tamuroo!",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Please use the following activation code to activate your account:",
					InviteCode:   activationCode,
				},
			},
			Outros: []string{
				"Visit our website and enter the activation code in the provided field to complete the registration process.",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("render activation mail: %w", err)
	}

	return mm.SendEmail(ctx, email, "Welcome to Tamuroo!", body)
}

func (mm *MailManager) SendPasswordResetMail(ctx context.Context, email, username, resetCode string, validFor time.Duration) error {
	body, err := mm.Hermes.GenerateHTML(hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				"We received a request to reset your Tamuroo account password. If you didn't make this request, you can ignore this email.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Use the following code to reset your password:",
					InviteCode:   resetCode,
				},
			},
			Outros: []string{
				fmt.Sprintf("This code will expire in %s. If you did not request a password reset, please disregard this email.", validFor),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("render password reset mail: %w", err)
	}

	return mm.SendEmail(ctx, email, "Password Reset - Tamuroo", body)
}
