package models

import (
	"otakufest/src/types"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:150" json:"username"`
	Email     string    `gorm:"uniqueIndex" json:"email"`
	Password  string    `json:"-"`
	FirstName string    `gorm:"size:150" json:"first_name,omitempty"`
	LastName  string    `gorm:"size:150" json:"last_name,omitempty"`

	Profile *UserProfile  `gorm:"foreignKey:user_id" json:"profile,omitempty"`
	Tickets []Ticket      `gorm:"foreignKey:user_id" json:"-"`
	Orders  []TicketOrder `gorm:"foreignKey:user_id" json:"-"`

	types.Timestamps
}

// UserProfile holds per-user preference and engagement records. It is created
// by the register handler right after the user row, never independently
// deleted.
type UserProfile struct {
	ID     uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`

	OtakuLevel     string           `gorm:"size:50;default:'newbie'" json:"otaku_level"`
	FavoriteGenres types.JSONBArray `gorm:"type:jsonb" json:"favorite_genres,omitempty"`
	Phone          string           `gorm:"size:20" json:"phone,omitempty"`
	Bio            string           `json:"bio,omitempty"`
	EventsAttended uint             `json:"events_attended"`

	User User `gorm:"foreignKey:user_id" json:"-"`

	types.Timestamps
}

type NewsletterSubscription struct {
	ID       uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Email    string    `gorm:"uniqueIndex" json:"email"`
	IsActive bool      `gorm:"default:true" json:"is_active"`

	types.Timestamps
}

type FavoriteEvent struct {
	ID      uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_favorite_events_user_event" json:"user_id"`
	EventID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_favorite_events_user_event" json:"event_id"`

	User  User  `gorm:"foreignKey:user_id" json:"-"`
	Event Event `gorm:"foreignKey:event_id" json:"-"`

	types.Timestamps
}

type EventAttendance struct {
	ID         uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_event_attendances_user_event" json:"user_id"`
	EventID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_event_attendances_user_event" json:"event_id"`
	AttendedAt time.Time `json:"attended_at"`

	User  User  `gorm:"foreignKey:user_id" json:"-"`
	Event Event `gorm:"foreignKey:event_id" json:"-"`

	types.Timestamps
}
