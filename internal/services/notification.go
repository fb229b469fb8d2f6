package services

import (
	"context"

	"eventbooking/internal/domain"
)

type bookingNotifier struct {
	emailService domain.EmailService
}

// NewBookingNotifier returns a handler that emails the booker when a booking is confirmed.
func NewBookingNotifier(emailService domain.EmailService) domain.BookingConfirmedHandler {
	return &bookingNotifier{emailService: emailService}
}

func (n *bookingNotifier) HandleBookingConfirmed(ctx context.Context, msg *domain.BookingConfirmed) error {
	return n.emailService.SendBookingConfirmed(ctx, &domain.BookingConfirmedEmailData{
		Email:      msg.UserEmail,
		Username:   msg.Username,
		EventTitle: msg.EventTitle,
		EventDate:  msg.EventDate,
		Seats:      msg.Seats,
		BookingID:  msg.BookingID,
	})
}
