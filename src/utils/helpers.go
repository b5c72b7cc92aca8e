package utils

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"time"

	"otakufest/src/config"
	"otakufest/src/db"
	"otakufest/src/lib"
	"otakufest/src/models"
	"otakufest/src/types"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

// User-facing failures surfaced by the ticketing flows. Messages are in
// Indonesian to match the rest of the platform copy.
var (
	ErrEventNotFound  = errors.New("Acara tidak ditemukan")
	ErrOrderNotFound  = errors.New("Pesanan tidak ditemukan")
	ErrTicketNotFound = errors.New("Tiket tidak ditemukan")
	ErrSoldOut        = errors.New("Tiket sudah habis")
)

// GenerateEventSlug slugifies the title and appends a numeric suffix until
// the result is unused.
func GenerateEventSlug(tx *gorm.DB, title string) (string, error) {
	base := slug.Make(title)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&models.Event{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func CreateNewEvent(params *types.CreateEventRequestBody, creatorId uuid.UUID) (*models.Event, error) {
	startDate, err := time.Parse(config.TIME_PARSE_FORMAT, params.StartDate)
	if err != nil {
		log.Printf("Error parsing start_date: %s\n", err.Error())
		return nil, err
	}
	endDate, err := time.Parse(config.TIME_PARSE_FORMAT, params.EndDate)
	if err != nil {
		log.Printf("Error parsing end_date: %s\n", err.Error())
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, errors.New("end_date must not come before start_date")
	}
	price, err := decimal.NewFromString(params.Price)
	if err != nil {
		return nil, err
	}
	event := models.Event{
		Title:          params.Title,
		Description:    params.Description,
		Category:       types.EventCategory(params.Category),
		Status:         types.EVENT_UPCOMING,
		StartDate:      startDate,
		EndDate:        endDate,
		Venue:          params.Venue,
		Location:       params.Location,
		Capacity:       params.Capacity,
		Price:          price,
		FeaturedImage:  params.FeaturedImage,
		BannerImage:    params.BannerImage,
		CreatedByID:    creatorId,
		IsFeatured:     params.IsFeatured,
		IsPublished:    true,
		Requirements:   params.Requirements,
		AgeRestriction: params.AgeRestriction,
	}
	if params.EarlyBirdPrice != nil {
		ebp, err := decimal.NewFromString(*params.EarlyBirdPrice)
		if err != nil {
			return nil, err
		}
		event.EarlyBirdPrice = &ebp
	}
	if params.EarlyBirdDeadline != nil {
		deadline, err := time.Parse(config.TIME_PARSE_FORMAT, *params.EarlyBirdDeadline)
		if err != nil {
			log.Printf("Error parsing early_bird_deadline: %s\n", err.Error())
			return nil, err
		}
		event.EarlyBirdDeadline = &deadline
	}
	for _, tag := range params.Tags {
		event.Tags = append(event.Tags, tag)
	}

	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		eventSlug, err := GenerateEventSlug(tx, params.Title)
		if err != nil {
			return err
		}
		event.Slug = eventSlug
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// OrderTotal computes the amount charged for an order: unit price times
// quantity plus the flat admin fee.
func OrderTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Add(config.AdminFee())
}

// BuildOrder assembles the order row and its tickets without persisting
// anything. Each ticket carries quantity 1 and is priced at the event's
// current price at the given instant.
func BuildOrder(event *models.Event, params *types.CreateOrderRequestBody, userId *uuid.UUID, now time.Time) (*models.TicketOrder, []models.Ticket) {
	quantity := params.Quantity
	if quantity < 1 {
		quantity = 1
	}
	unitPrice := event.PriceAt(now)
	order := models.TicketOrder{
		UserID:        userId,
		TotalAmount:   OrderTotal(unitPrice, quantity),
		Status:        types.ORDER_PENDING,
		CustomerName:  params.CustomerName,
		CustomerEmail: params.CustomerEmail,
		CustomerPhone: params.CustomerPhone,
		PaymentMethod: params.PaymentMethod,
		Notes:         params.Notes,
	}
	tickets := make([]models.Ticket, 0, quantity)
	for i := 0; i < quantity; i++ {
		tickets = append(tickets, models.Ticket{
			EventID:    event.ID,
			UserID:     userId,
			Quantity:   1,
			UnitPrice:  unitPrice,
			TotalPrice: unitPrice,
			Status:     types.TICKET_PENDING,
			Notes:      params.Notes,
		})
	}
	return &order, tickets
}

// CreateOrder runs the whole purchase attempt in one transaction: event
// lookup, admission check against capacity, one order row and quantity
// ticket rows linked to it.
func CreateOrder(params *types.CreateOrderRequestBody, userId *uuid.UUID) (*models.TicketOrder, []models.Ticket, error) {
	eventId, err := uuid.Parse(params.EventID)
	if err != nil {
		return nil, nil, ErrEventNotFound
	}
	quantity := params.Quantity
	if quantity < 1 {
		quantity = 1
	}

	var order *models.TicketOrder
	var tickets []models.Ticket
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.
			Where(&models.Event{ID: eventId}).
			First(&event).
			Error; err != nil {
			if errors.Is(gorm.ErrRecordNotFound, err) {
				return ErrEventNotFound
			}
			return err
		}

		var issued int64
		if err := tx.
			Model(&models.Ticket{}).
			Where("event_id = ?", event.ID).
			Where("status IN (?)", []types.TicketStatus{types.TICKET_PENDING, types.TICKET_PAID, types.TICKET_USED}).
			Count(&issued).
			Error; err != nil {
			return err
		}
		if uint(issued)+uint(quantity) > event.Capacity {
			return ErrSoldOut
		}

		order, tickets = BuildOrder(&event, params, userId, time.Now())
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range tickets {
			tickets[i].OrderID = order.ID
			if err := tx.Create(&tickets[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, tickets, nil
}

// ConfirmPayment marks the caller's order completed and its pending tickets
// paid. The order status update is unconditional, so repeated confirmations
// succeed without touching already-paid tickets.
func ConfirmPayment(orderId uuid.UUID, userId uuid.UUID) error {
	db := db.GetDb()
	return db.Transaction(func(tx *gorm.DB) error {
		var order models.TicketOrder
		if err := tx.
			Where(&models.TicketOrder{ID: orderId, UserID: &userId}).
			First(&order).
			Error; err != nil {
			if errors.Is(gorm.ErrRecordNotFound, err) {
				return ErrOrderNotFound
			}
			return err
		}
		if err := tx.
			Model(&models.TicketOrder{}).
			Where("id = ?", order.ID).
			Update("status", types.ORDER_COMPLETED).
			Error; err != nil {
			return err
		}
		now := time.Now()
		if err := tx.
			Model(&models.Ticket{}).
			Where(&models.Ticket{OrderID: order.ID}).
			Where("status = ?", types.TICKET_PENDING).
			Updates(map[string]any{"status": types.TICKET_PAID, "paid_at": now}).
			Error; err != nil {
			return err
		}
		return nil
	})
}

// RefreshEventStatuses rolls published events forward through their date
// windows. Cancelled events are never touched.
func RefreshEventStatuses() {
	db := db.GetDb()
	now := time.Now()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Event{}).
			Where("is_published = ?", true).
			Where("status = ?", types.EVENT_UPCOMING).
			Where("start_date <= ? AND end_date > ?", now, now).
			Update("status", types.EVENT_ONGOING).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Event{}).
			Where("is_published = ?", true).
			Where("status IN (?)", []types.EventStatus{types.EVENT_UPCOMING, types.EVENT_ONGOING}).
			Where("end_date <= ?", now).
			Update("status", types.EVENT_COMPLETED).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error refreshing event statuses: %s\n", err.Error())
	}
}

const eventStatsCacheKey = "events:stats"

// EventStats aggregates counts over published events. The result is cached
// in Redis for five minutes when a client is configured.
func EventStats() (map[string]any, error) {
	rd := lib.GetRedisClient()
	if rd != nil {
		cached, err := rd.Get(context.Background(), eventStatsCacheKey).Result()
		if err == nil && cached != "" {
			var stats map[string]any
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return stats, nil
			}
		}
	}

	db := db.GetDb()
	var total, upcoming int64
	if err := db.
		Model(&models.Event{}).
		Where("is_published = ?", true).
		Count(&total).
		Error; err != nil {
		return nil, err
	}
	if err := db.
		Model(&models.Event{}).
		Where("is_published = ?", true).
		Where("start_date >= ?", time.Now()).
		Count(&upcoming).
		Error; err != nil {
		return nil, err
	}
	categories := map[string]int64{}
	for _, category := range types.EventCategories() {
		var count int64
		if err := db.
			Model(&models.Event{}).
			Where("is_published = ?", true).
			Where("category = ?", category).
			Count(&count).
			Error; err != nil {
			return nil, err
		}
		categories[string(category)] = count
	}
	stats := map[string]any{
		"total_events":    total,
		"upcoming_events": upcoming,
		"categories":      categories,
	}
	if rd != nil {
		payload, _ := json.Marshal(stats)
		rd.SetEx(context.Background(), eventStatsCacheKey, string(payload), 5*time.Minute)
	}
	return stats, nil
}

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	encodedString := hex.EncodeToString(cipherText)

	return encodedString, nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}

// TicketQRCodePath renders the e-ticket QR image for a ticket, caching it on
// disk under TEMP_DIR. The payload is encrypted so gate scanners holding the
// key can verify it offline.
func TicketQRCodePath(ticket *models.Ticket) (string, error) {
	tempdir := os.Getenv("TEMP_DIR")
	if tempdir == "" {
		tempdir = os.TempDir()
	}
	filename := fmt.Sprintf("eticket_%s.jpeg", ticket.TicketNumber)
	filepath := path.Join(tempdir, filename)
	if _, err := os.Stat(filepath); err == nil {
		return filepath, nil
	}

	rawData := map[string]any{
		"ticket_id":     ticket.ID.String(),
		"ticket_number": ticket.TicketNumber,
		"event_id":      ticket.EventID.String(),
	}
	rawBytes, _ := json.Marshal(rawData)

	keyEnv := os.Getenv("API_QRC_SECRET")
	key, err := hex.DecodeString(keyEnv)
	if err != nil {
		log.Printf("Could not read key from string: %s\n", err.Error())
		return "", err
	}
	encryptedMessage, err := EncryptMessage(key, string(rawBytes))
	if err != nil {
		log.Printf("Error encrypting message: %s\n", err.Error())
		return "", err
	}
	qrc, err := qrcode.New(encryptedMessage)
	if err != nil {
		return "", err
	}
	if err := qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return "", err
	}
	return filepath, nil
}
