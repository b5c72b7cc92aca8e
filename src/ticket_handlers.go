package main

import (
	"errors"
	"log"
	"net/http"

	"otakufest/src/db"
	"otakufest/src/middlewares"
	"otakufest/src/models"
	"otakufest/src/types"
	"otakufest/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ticketGuestHandlers carries the routes open to guest checkout; the caller
// is resolved when a token is presented but never required.
func ticketGuestHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/tickets/create-order", func(ctx *gin.Context) {
			var body types.CreateOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := middlewares.CallerID(ctx)
			order, tickets, err := utils.CreateOrder(&body, userId)
			if err != nil {
				if errors.Is(err, utils.ErrEventNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
					return
				}
				log.Printf("error creating order: %s", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ticketPayload := make([]gin.H, 0, len(tickets))
			for _, t := range tickets {
				ticketPayload = append(ticketPayload, gin.H{
					"id":            t.ID,
					"ticket_number": t.TicketNumber,
				})
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"order_id":       order.ID,
				"order_number":   order.OrderNumber,
				"total_amount":   order.TotalAmount,
				"payment_method": order.PaymentMethod,
				"tickets":        ticketPayload,
				"message":        "Pesanan berhasil dibuat. Silakan lakukan pembayaran.",
			})
		})
	return g
}

func ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tickets/my-tickets", func(ctx *gin.Context) {
			userId := ctx.MustGet("id").(uuid.UUID)
			var tickets []models.Ticket
			db := db.GetDb()
			if err := db.
				Where(&models.Ticket{UserID: &userId}).
				Preload("Event").
				Order("created_at desc").
				Find(&tickets).
				Error; err != nil {
				log.Printf("Error retrieving Tickets: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"results": tickets})
		}).
		GET("/tickets/my-orders", func(ctx *gin.Context) {
			userId := ctx.MustGet("id").(uuid.UUID)
			var orders []models.TicketOrder
			db := db.GetDb()
			if err := db.
				Where(&models.TicketOrder{UserID: &userId}).
				Preload("Tickets").
				Order("created_at desc").
				Find(&orders).
				Error; err != nil {
				log.Printf("Error retrieving Orders: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"results": orders})
		}).
		POST("/tickets/confirm-payment/:id", func(ctx *gin.Context) {
			orderId, err := uuid.Parse(ctx.Param("id"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.MustGet("id").(uuid.UUID)
			if err := utils.ConfirmPayment(orderId, userId); err != nil {
				if errors.Is(err, utils.ErrOrderNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
					return
				}
				log.Printf("error confirming payment: %s", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "Pembayaran berhasil dikonfirmasi"})
		}).
		GET("/tickets/:id/qrcode", func(ctx *gin.Context) {
			ticketId, err := uuid.Parse(ctx.Param("id"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.MustGet("id").(uuid.UUID)
			var ticket models.Ticket
			db := db.GetDb()
			if err := db.
				Where(&models.Ticket{ID: ticketId, UserID: &userId}).
				Where("status IN (?)", []types.TicketStatus{types.TICKET_PAID, types.TICKET_USED}).
				First(&ticket).
				Error; err != nil {
				if errors.Is(gorm.ErrRecordNotFound, err) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": utils.ErrTicketNotFound.Error()})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			filepath, err := utils.TicketQRCodePath(&ticket)
			if err != nil {
				log.Printf("Error generating eticket for [%s]: %s\n", ticket.TicketNumber, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.FileAttachment(filepath, "eticket.jpeg")
		})
	return g
}
