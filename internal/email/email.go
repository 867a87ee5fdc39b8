package email

import (
	"fmt"
	"net/smtp"
	"os"

	"solpass.app/cloud/internal/billing"
	"solpass.app/cloud/internal/logger"
	"solpass.app/cloud/models"
)

func Send(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	if smtpHost == "" || smtpPort == "" || smtpUser == "" || smtpPass == "" {
		logger.Error("SMTP configuration missing")
		return fmt.Errorf("SMTP configuration missing")
	}

	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", smtpUser, to, subject, body))

	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)
	return smtp.SendMail(addr, auth, smtpUser, []string{to}, msg)
}

// SendReceipt mails a receipt for one mock subscription charge.
func SendReceipt(to string, sub models.Subscription, payment models.PaymentRecord) error {
	subject := fmt.Sprintf("SolPass receipt: %s plan", sub.PlanID)

	body := fmt.Sprintf("Your %s subscription was billed.\r\n"+
		"\r\n"+
		"Amount: %g SOL\r\n"+
		"Date: %s\r\n"+
		"Transaction: %s\r\n"+
		"Next billing date: %s\r\n",
		sub.PlanID,
		payment.Amount,
		billing.FormatDateTime(payment.Timestamp),
		payment.TxSignature,
		billing.FormatDate(sub.NextBillingDate),
	)

	return Send(to, subject, body)
}
