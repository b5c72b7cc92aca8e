package boot

import (
	"log"
	"time"

	"otakufest/src/db"
	"otakufest/src/lib"
	"otakufest/src/models"
	"otakufest/src/utils"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.NewsletterSubscription{},
		&models.Event{},
		&models.EventImage{},
		&models.CosplayCompetition{},
		&models.AnisongConcert{},
		&models.EventReview{},
		&models.Ticket{},
		&models.TicketOrder{},
		&models.FavoriteEvent{},
		&models.EventAttendance{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the background job that rolls event statuses forward
// from their date windows.
func InitScheduler() {
	id, err := lib.CreateCronJob(utils.RefreshEventStatuses, 1*time.Minute)
	if err != nil {
		log.Printf("Error scheduling event status job: %s\n", err.Error())
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		return
	}
	sched.Start()
	log.Printf("Event status job scheduled: %s\n", *id)
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("Error shutting down Scheduler: %s\n", err.Error())
	}
}
