package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
}

type EventCategory string

const (
	CATEGORY_FESTIVAL  EventCategory = "festival"
	CATEGORY_COSPLAY   EventCategory = "cosplay"
	CATEGORY_CONCERT   EventCategory = "concert"
	CATEGORY_WORKSHOP  EventCategory = "workshop"
	CATEGORY_SCREENING EventCategory = "screening"
)

func EventCategories() []EventCategory {
	return []EventCategory{
		CATEGORY_FESTIVAL,
		CATEGORY_COSPLAY,
		CATEGORY_CONCERT,
		CATEGORY_WORKSHOP,
		CATEGORY_SCREENING,
	}
}

type EventStatus string

const (
	EVENT_UPCOMING  EventStatus = "upcoming"
	EVENT_ONGOING   EventStatus = "ongoing"
	EVENT_COMPLETED EventStatus = "completed"
	EVENT_CANCELLED EventStatus = "cancelled"
)

type CosplayTheme string

const (
	THEME_MAGICAL_GIRLS  CosplayTheme = "magical_girls"
	THEME_SHOUNEN_HEROES CosplayTheme = "shounen_heroes"
	THEME_VILLAINS       CosplayTheme = "villains"
	THEME_MECHA          CosplayTheme = "mecha"
	THEME_FANTASY        CosplayTheme = "fantasy"
	THEME_MODERN         CosplayTheme = "modern"
	THEME_CLASSIC        CosplayTheme = "classic"
	THEME_ORIGINAL       CosplayTheme = "original"
)

type TicketStatus string

const (
	TICKET_PENDING   TicketStatus = "pending"
	TICKET_PAID      TicketStatus = "paid"
	TICKET_USED      TicketStatus = "used"
	TICKET_CANCELLED TicketStatus = "cancelled"
	TICKET_REFUNDED  TicketStatus = "refunded"
)

type OrderStatus string

const (
	ORDER_PENDING    OrderStatus = "pending"
	ORDER_PROCESSING OrderStatus = "processing"
	ORDER_COMPLETED  OrderStatus = "completed"
	ORDER_CANCELLED  OrderStatus = "cancelled"
)

type JSONBArray []any

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = nil
		return nil
	}
	return errors.New("unsupported source type for jsonb column")
}
