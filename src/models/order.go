package models

import (
	"errors"
	"otakufest/src/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TicketOrder struct {
	ID     uuid.UUID  `gorm:"primarykey;type:uuid" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	OrderNumber string            `gorm:"uniqueIndex;size:20" json:"order_number"`
	TotalAmount decimal.Decimal   `gorm:"type:numeric(12,2)" json:"total_amount"`
	Status      types.OrderStatus `gorm:"size:20;default:'pending'" json:"status"`

	CustomerName  string `gorm:"size:200" json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `gorm:"size:20" json:"customer_phone"`
	PaymentMethod string `gorm:"size:50" json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`

	User    *User    `gorm:"foreignKey:user_id" json:"-"`
	Tickets []Ticket `gorm:"foreignKey:order_id" json:"tickets,omitempty"`

	types.Timestamps
}

// BeforeCreate mirrors Ticket.BeforeCreate for the ORD reference.
func (o *TicketOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderNumber != "" {
		return nil
	}
	for i := 0; i < 5; i++ {
		number := NumberFromID("ORD", o.ID)
		var count int64
		if err := tx.Model(&TicketOrder{}).Where("order_number = ?", number).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			o.OrderNumber = number
			return nil
		}
		o.ID = uuid.New()
	}
	return errors.New("could not derive a unique order number")
}
