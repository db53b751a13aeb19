package service

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"smartpark/internal/config"
	"smartpark/internal/entities"
	"smartpark/internal/logger"
)

const notifyTimeLayout = "02 Jan 2006 15:04 MST"

// NotifyService delivers reservation confirmations over email and SMS.
// Dispatch is fire-and-forget: the reservation is already committed and a
// delivery failure must never surface to the caller, so everything past the
// method boundary only logs.
type NotifyService struct {
	cfg *config.Config
	log *logger.Entry
}

func NewNotifyService(cfg *config.Config) *NotifyService {
	return &NotifyService{
		cfg: cfg,
		log: logger.GetLogger().WithComponent("notify_service"),
	}
}

func (s *NotifyService) SendReservationNotification(n entities.ReservationNotification) {
	go func() {
		if err := s.sendEmail(n); err != nil {
			s.log.WithError(err).WithFields(logger.Fields{
				"reservation_id": n.ReservationID,
				"email":          n.UserEmail,
			}).Warn("reservation confirmation email failed")
		}
		if n.UserPhone == "" {
			return
		}
		if err := s.sendSMS(n); err != nil {
			s.log.WithError(err).WithFields(logger.Fields{
				"reservation_id": n.ReservationID,
			}).Warn("reservation confirmation SMS failed")
		}
	}()
}

func (s *NotifyService) sendEmail(n entities.ReservationNotification) error {
	if s.cfg.SendGridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY not configured")
	}
	if s.cfg.SendGridFromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL not configured")
	}

	subject := fmt.Sprintf("Your SmartPark reservation is confirmed - %s", n.BookingReference)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour reservation is confirmed.\n\n"+
			"Reservation Details:\n"+
			"Reference: %s\n"+
			"Vehicle: %s (Plate: %s)\n"+
			"Spot: %s (%s)\n"+
			"Type: %s\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n"+
			"Price: %s\n\n"+
			"Thank you for choosing SmartPark.",
		n.UserFullName, n.BookingReference, n.CarModel, n.CarLicensePlate,
		n.ParkingSpotNumber, n.ParkingZoneName, n.ReservationType,
		n.StartTime.Format(notifyTimeLayout), n.EndTime.Format(notifyTimeLayout),
		n.FinalPrice.StringFixed(2),
	)

	from := mail.NewEmail(s.cfg.SendGridFromName, s.cfg.SendGridFromEmail)
	to := mail.NewEmail(n.UserFullName, n.UserEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.cfg.SendGridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *NotifyService) sendSMS(n entities.ReservationNotification) error {
	if s.cfg.TwilioAccountSID == "" || s.cfg.TwilioAuthToken == "" {
		return fmt.Errorf("twilio credentials not configured")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: s.cfg.TwilioAccountSID,
		Password: s.cfg.TwilioAuthToken,
	})

	body := fmt.Sprintf("SmartPark: reservation %s confirmed. Check-in: %s. Details in your email.",
		n.BookingReference, n.StartTime.Format("02/01 15:04"))

	params := &openapi.CreateMessageParams{}
	params.SetTo(n.UserPhone)
	params.SetFrom(s.cfg.TwilioFromNumber)
	params.SetBody(body)

	if _, err := client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}
	return nil
}

var _ Notifier = (*NotifyService)(nil)
