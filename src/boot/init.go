package boot

import (
	"log"
	"psm/src/config"
	"psm/src/db"
	"psm/src/lib"
	"psm/src/models"
	"psm/src/utils"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Professional{},
		&models.Booking{},
		&models.Payment{},
		&models.Dispute{},
		&models.Earning{},
		&models.WithdrawRequest{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go lib.KafkaCreateTopics("AuditTrail")
}

// InitScheduler starts the reaper that releases expired payment holds. It
// runs at half the hold window so a hold is never overstayed by more than
// one interval.
func InitScheduler() {
	interval := time.Duration(config.BookingHold()) * time.Minute / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	id, err := lib.CreateCronJob(utils.ExpirePendingBookings, interval)
	if err != nil {
		log.Printf("Error scheduling job: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s\n", *id)
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
}
