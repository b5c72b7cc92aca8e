package models

import (
	"errors"
	"otakufest/src/types"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Ticket struct {
	ID      uuid.UUID  `gorm:"primarykey;type:uuid" json:"id"`
	EventID uuid.UUID  `gorm:"type:uuid;index" json:"event_id,omitempty"`
	UserID  *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	OrderID uuid.UUID  `gorm:"type:uuid;index" json:"order_id,omitempty"`

	TicketNumber string          `gorm:"uniqueIndex;size:20" json:"ticket_number"`
	Quantity     uint            `gorm:"default:1" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2)" json:"unit_price"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_price"`

	Status types.TicketStatus `gorm:"size:20;default:'pending'" json:"status"`
	PaidAt *time.Time         `json:"paid_at,omitempty"`
	UsedAt *time.Time         `json:"used_at,omitempty"`

	Notes  string `json:"notes,omitempty"`
	QRCode string `gorm:"size:255" json:"qr_code,omitempty"`

	Event Event       `gorm:"foreignKey:event_id" json:"event,omitempty"`
	User  *User       `gorm:"foreignKey:user_id" json:"-"`
	Order TicketOrder `gorm:"foreignKey:order_id" json:"-"`

	types.Timestamps
}

// NumberFromID renders the human-readable reference for an entity: the given
// prefix followed by the first 8 hex characters of its identifier, uppercased.
func NumberFromID(prefix string, id uuid.UUID) string {
	hexid := strings.ReplaceAll(id.String(), "-", "")
	return prefix + strings.ToUpper(hexid[:8])
}

// BeforeCreate assigns the identifier and derives the ticket number from it.
// Truncating the UUID to 8 hex characters leaves a small collision window, so
// the derived number is checked against the table and the identifier redrawn
// on a clash.
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.TicketNumber != "" {
		return nil
	}
	for i := 0; i < 5; i++ {
		number := NumberFromID("TKT", t.ID)
		var count int64
		if err := tx.Model(&Ticket{}).Where("ticket_number = ?", number).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			t.TicketNumber = number
			return nil
		}
		t.ID = uuid.New()
	}
	return errors.New("could not derive a unique ticket number")
}
