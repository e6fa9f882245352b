package utils

import (
	"fmt"
	"log"
	"os"
	"psm/src/db"
	"psm/src/lib"
	"psm/src/models"
)

// NotifyUser emails a user about a booking event and mirrors it as a push
// notification when a device token is on file. Both channels are best
// effort and run off the request path.
func NotifyUser(userId uint, subject string, body string) {
	go func() {
		conn := db.GetDb()
		var user models.User
		if err := conn.Where(&models.User{ID: userId}).First(&user).Error; err != nil {
			log.Printf("NotifyUser: user %d not found: %s\n", userId, err.Error())
			return
		}
		if user.Email != "" {
			err := lib.SendMail(&lib.SendMailInput{
				From:     os.Getenv("MAIL_FROM"),
				FromName: os.Getenv("MAIL_FROM_NAME"),
				To:       []string{user.Email},
				Subject:  subject,
				Body:     body,
			})
			if err != nil {
				log.Printf("NotifyUser: failed to send mail to user %d: %s\n", userId, err.Error())
			}
		}
		if user.Metadata != nil {
			if token, ok := (*user.Metadata)["fcm_token"].(string); ok && token != "" {
				lib.PushNotify(token, map[string]string{
					"title": subject,
					"body":  body,
				})
			}
		}
	}()
}

// NotifyBookingByID looks the booking up off the request path and notifies
// both parties.
func NotifyBookingByID(bookingId uint, subject string, body string) {
	go func() {
		conn := db.GetDb()
		var booking models.Booking
		if err := conn.Where(&models.Booking{ID: bookingId}).First(&booking).Error; err != nil {
			log.Printf("NotifyBookingByID: booking %d not found: %s\n", bookingId, err.Error())
			return
		}
		NotifyBookingParties(&booking, subject, body)
	}()
}

func NotifyBookingParties(booking *models.Booking, subject string, body string) {
	NotifyUser(booking.ClientID, subject, body)
	conn := db.GetDb()
	var prof models.Professional
	if err := conn.Where(&models.Professional{ID: booking.ProfessionalID}).First(&prof).Error; err != nil {
		log.Printf("NotifyBookingParties: professional %d not found: %s\n", booking.ProfessionalID, err.Error())
		return
	}
	NotifyUser(prof.UserID, subject, fmt.Sprintf("%s (booking #%d)", body, booking.ID))
}
