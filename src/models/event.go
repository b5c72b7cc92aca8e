package models

import (
	"otakufest/src/types"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Event struct {
	ID          uuid.UUID           `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Title       string              `gorm:"size:200" json:"title"`
	Description string              `json:"description"`
	Category    types.EventCategory `gorm:"size:20;index:idx_events_category_status" json:"category"`
	Status      types.EventStatus   `gorm:"size:20;default:'upcoming';index:idx_events_category_status" json:"status"`

	StartDate time.Time `gorm:"index" json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Venue     string    `gorm:"size:200" json:"venue"`
	Location  string    `gorm:"size:300" json:"location"`
	Capacity  uint      `json:"capacity"`

	Price             decimal.Decimal  `gorm:"type:numeric(12,2)" json:"price"`
	EarlyBirdPrice    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"early_bird_price,omitempty"`
	EarlyBirdDeadline *time.Time       `json:"early_bird_deadline,omitempty"`

	FeaturedImage *string `json:"featured_image,omitempty"`
	BannerImage   *string `json:"banner_image,omitempty"`

	CreatedByID uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	Slug        string    `gorm:"uniqueIndex;size:220" json:"slug"`
	IsFeatured  bool      `gorm:"index" json:"is_featured"`
	IsPublished bool      `gorm:"default:true" json:"is_published"`

	Tags           types.JSONBArray `gorm:"type:jsonb" json:"tags,omitempty"`
	Requirements   string           `json:"requirements,omitempty"`
	AgeRestriction string           `gorm:"size:50" json:"age_restriction,omitempty"`

	CreatedBy          User                `gorm:"foreignKey:created_by_id" json:"-"`
	Images             []EventImage        `gorm:"foreignKey:event_id" json:"images,omitempty"`
	CosplayCompetition *CosplayCompetition `gorm:"foreignKey:event_id" json:"cosplay_competition,omitempty"`
	AnisongConcert     *AnisongConcert     `gorm:"foreignKey:event_id" json:"anisong_concert,omitempty"`
	Reviews            []EventReview       `gorm:"foreignKey:event_id" json:"reviews,omitempty"`

	// Derived fields, filled by Derive before serialization.
	CurrentPrice    decimal.Decimal `gorm:"-" json:"current_price"`
	EarlyBirdActive bool            `gorm:"-" json:"is_early_bird_active"`
	AverageRating   float64         `gorm:"-" json:"average_rating"`

	types.Timestamps
}

// EarlyBirdAt reports whether the early-bird window is open at the given
// instant. A missing deadline disables early pricing regardless of the
// early-bird price being set.
func (e *Event) EarlyBirdAt(now time.Time) bool {
	if e.EarlyBirdDeadline == nil {
		return false
	}
	return now.Before(*e.EarlyBirdDeadline)
}

// PriceAt returns the effective unit price at the given instant: the
// early-bird price while the window is open and a price is set, the base
// price otherwise.
func (e *Event) PriceAt(now time.Time) decimal.Decimal {
	if e.EarlyBirdAt(now) && e.EarlyBirdPrice != nil {
		return *e.EarlyBirdPrice
	}
	return e.Price
}

// ReviewAverage is the arithmetic mean over the loaded reviews, 0 when there
// are none.
func (e *Event) ReviewAverage() float64 {
	if len(e.Reviews) == 0 {
		return 0
	}
	var sum uint
	for _, r := range e.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(e.Reviews))
}

// Derive fills the computed response fields from the persisted columns.
func (e *Event) Derive(now time.Time) {
	e.CurrentPrice = e.PriceAt(now)
	e.EarlyBirdActive = e.EarlyBirdAt(now)
	e.AverageRating = e.ReviewAverage()
	for i := range e.Reviews {
		e.Reviews[i].Derive()
	}
}

type EventImage struct {
	ID        uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid" json:"event_id,omitempty"`
	Image     string    `json:"image"`
	Caption   string    `gorm:"size:200" json:"caption,omitempty"`
	SortOrder uint      `gorm:"column:sort_order" json:"order"`

	Event Event `gorm:"foreignKey:event_id" json:"-"`
}

type CosplayCompetition struct {
	ID      uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"-"`
	EventID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"event_id,omitempty"`

	Theme       types.CosplayTheme `gorm:"size:50" json:"theme"`
	PrizePool   decimal.Decimal    `gorm:"type:numeric(12,2)" json:"prize_pool"`
	FirstPrize  decimal.Decimal    `gorm:"type:numeric(12,2)" json:"first_prize"`
	SecondPrize *decimal.Decimal   `gorm:"type:numeric(12,2)" json:"second_prize,omitempty"`
	ThirdPrize  *decimal.Decimal   `gorm:"type:numeric(12,2)" json:"third_prize,omitempty"`

	RegistrationDeadline time.Time `json:"registration_deadline"`
	MaxParticipants      uint      `json:"max_participants"`
	Rules                string    `json:"rules"`

	Event Event `gorm:"foreignKey:event_id" json:"-"`
}

type AnisongConcert struct {
	ID      uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"-"`
	EventID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"event_id,omitempty"`

	ArtistName      string           `gorm:"size:200" json:"artist_name"`
	ArtistBio       string           `json:"artist_bio"`
	Setlist         types.JSONBArray `gorm:"type:jsonb" json:"setlist,omitempty"`
	DurationMinutes uint             `json:"duration_minutes"`

	MeetAndGreet         bool `json:"meet_and_greet"`
	MerchandiseAvailable bool `gorm:"default:true" json:"merchandise_available"`
	LiveStreaming        bool `json:"live_streaming"`

	Event Event `gorm:"foreignKey:event_id" json:"-"`
}

type EventReview struct {
	ID      uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	EventID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_event_reviews_event_user" json:"event_id,omitempty"`
	UserID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_event_reviews_event_user" json:"-"`
	Rating  uint      `json:"rating"`
	Comment string    `json:"comment"`

	Event Event `gorm:"foreignKey:event_id" json:"-"`
	User  User  `gorm:"foreignKey:user_id" json:"-"`

	UserName string `gorm:"-" json:"user_name,omitempty"`

	types.Timestamps
}

// Derive copies the reviewer's username out of the preloaded association.
func (r *EventReview) Derive() {
	if r.User.Username != "" {
		r.UserName = r.User.Username
	}
}
