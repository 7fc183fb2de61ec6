// Package notify sends claim lifecycle emails through SES. Delivery is
// fire-and-forget: a failed send is logged and never surfaces to the caller,
// since the claim transition has already committed.
package notify

import (
	"context"
	"fmt"

	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mailer sends claim notifications to employees.
type Mailer struct {
	Client *sesv2.Client
	Sender string
	Logger *zap.Logger
}

// ClaimSubmitted confirms a successful submission to the employee.
func (m *Mailer) ClaimSubmitted(ctx context.Context, to, claimID string, amount decimal.Decimal) {
	body := fmt.Sprintf(`<h2>Your claim has been submitted</h2>
<p>Claim ID: <strong>%s</strong></p>
<p>Amount: <strong>LKR %s</strong></p>
<p>Your claim is now pending HR approval.</p>`, claimID, amount.StringFixed(2))
	m.send(ctx, to, "Claim Submitted Successfully", body)
}

// StatusChanged tells the employee about a review or payment outcome.
func (m *Mailer) StatusChanged(ctx context.Context, to, claimID string, status models.ClaimStatus, comment string) {
	var subject, message string
	switch status {
	case models.StatusApproved:
		subject = "Claim Approved"
		message = "<p>Your claim has been approved by HR and forwarded to Accounts for payment.</p>"
	case models.StatusRejected, models.StatusAutoRejected:
		subject = "Claim Rejected"
		message = "<p>Your claim has been rejected.</p>"
		if comment != "" {
			message += fmt.Sprintf("<p><strong>Reason:</strong> %s</p>", comment)
		}
		message += "<p>You can edit and resubmit your claim.</p>"
	case models.StatusPaid:
		subject = "Payment Processed"
		message = "<p>Your reimbursement has been processed and payment has been completed.</p>"
	default:
		return
	}
	body := fmt.Sprintf("<h2>%s</h2>\n<p>Claim ID: <strong>%s</strong></p>\n%s", subject, claimID, message)
	m.send(ctx, to, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, html string) {
	if to == "" {
		m.Logger.Warn("notification skipped: no recipient", zap.String("subject", subject))
		return
	}
	_, err := m.Client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.Sender),
		Destination:      &sestypes.Destination{ToAddresses: []string{to}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: aws.String(html)},
				},
			},
		},
	})
	if err != nil {
		m.Logger.Warn("notification send failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return
	}
	m.Logger.Info("notification sent", zap.String("to", to), zap.String("subject", subject))
}
