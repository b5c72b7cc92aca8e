package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"otakufest/src/db"
	"otakufest/src/models"
	"otakufest/src/types"
	"otakufest/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var eventOrderings = map[string]string{
	"start_date":  "start_date asc",
	"-start_date": "start_date desc",
	"created_at":  "created_at asc",
	"-created_at": "created_at desc",
	"price":       "price asc",
	"-price":      "price desc",
}

func parseEventDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func deriveAll(events []models.Event, now time.Time) {
	for i := range events {
		events[i].Derive(now)
	}
}

func eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/events", func(ctx *gin.Context) {
			var query types.EventListQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			q := db.Model(&models.Event{}).Where("is_published = ?", true)
			if query.Category != "" {
				q = q.Where("category = ?", query.Category)
			}
			if query.Status != "" {
				q = q.Where("status = ?", query.Status)
			}
			if query.IsFeatured != nil {
				q = q.Where("is_featured = ?", *query.IsFeatured)
			}
			if query.StartDateAfter != "" {
				t, err := parseEventDate(query.StartDateAfter)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				q = q.Where("start_date >= ?", t)
			}
			if query.StartDateBefore != "" {
				t, err := parseEventDate(query.StartDateBefore)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				q = q.Where("start_date <= ?", t)
			}
			if query.PriceMin != "" {
				min, err := decimal.NewFromString(query.PriceMin)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				q = q.Where("price >= ?", min)
			}
			if query.PriceMax != "" {
				max, err := decimal.NewFromString(query.PriceMax)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				q = q.Where("price <= ?", max)
			}
			if query.Location != "" {
				q = q.Where("location ILIKE ?", "%"+query.Location+"%")
			}
			if query.Search != "" {
				pattern := "%" + query.Search + "%"
				q = q.Where(
					db.Where("title ILIKE ?", pattern).
						Or("description ILIKE ?", pattern).
						Or("venue ILIKE ?", pattern).
						Or("location ILIKE ?", pattern),
				)
			}
			ordering, ok := eventOrderings[query.Ordering]
			if !ok {
				ordering = "created_at desc"
			}
			var events []models.Event
			if err := q.Order(ordering).Find(&events).Error; err != nil {
				log.Printf("Error retrieving Events: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			deriveAll(events, time.Now())
			ctx.JSON(http.StatusOK, gin.H{"results": events, "count": len(events)})
		}).
		GET("/events/featured", func(ctx *gin.Context) {
			var events []models.Event
			db := db.GetDb()
			if err := db.
				Where(&models.Event{IsFeatured: true, IsPublished: true}).
				Order("created_at desc").
				Find(&events).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			deriveAll(events, time.Now())
			ctx.JSON(http.StatusOK, gin.H{"results": events})
		}).
		GET("/events/upcoming", func(ctx *gin.Context) {
			var events []models.Event
			db := db.GetDb()
			if err := db.
				Where("is_published = ?", true).
				Where("start_date >= ?", time.Now()).
				Order("start_date asc").
				Find(&events).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			deriveAll(events, time.Now())
			ctx.JSON(http.StatusOK, gin.H{"results": events})
		}).
		GET("/events/cosplay", func(ctx *gin.Context) {
			listEventsByCategory(ctx, types.CATEGORY_COSPLAY)
		}).
		GET("/events/concerts", func(ctx *gin.Context) {
			listEventsByCategory(ctx, types.CATEGORY_CONCERT)
		}).
		GET("/events/stats", func(ctx *gin.Context) {
			stats, err := utils.EventStats()
			if err != nil {
				log.Printf("Error computing event stats: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, stats)
		}).
		GET("/events/search", func(ctx *gin.Context) {
			var query types.EventSearchQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			q := db.Model(&models.Event{}).Where("is_published = ?", true)
			if query.Query != "" {
				pattern := "%" + query.Query + "%"
				q = q.Where(
					db.Where("title ILIKE ?", pattern).
						Or("description ILIKE ?", pattern).
						Or("venue ILIKE ?", pattern),
				)
			}
			if query.Category != "" {
				q = q.Where("category = ?", query.Category)
			}
			if query.Location != "" {
				q = q.Where("location ILIKE ?", "%"+query.Location+"%")
			}
			if query.DateFrom != "" {
				t, err := parseEventDate(query.DateFrom)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				q = q.Where("start_date >= ?", t)
			}
			if query.DateTo != "" {
				t, err := parseEventDate(query.DateTo)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				q = q.Where("start_date <= ?", t)
			}
			var events []models.Event
			if err := q.Order("created_at desc").Find(&events).Error; err != nil {
				log.Printf("Error searching Events: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			deriveAll(events, time.Now())
			ctx.JSON(http.StatusOK, events)
		}).
		GET("/events/:slug", func(ctx *gin.Context) {
			slugParam := ctx.Param("slug")
			var event models.Event
			db := db.GetDb()
			if err := db.
				Where(&models.Event{Slug: slugParam, IsPublished: true}).
				Preload("Images", func(tx *gorm.DB) *gorm.DB {
					return tx.Order("sort_order asc")
				}).
				Preload("CosplayCompetition").
				Preload("AnisongConcert").
				Preload("Reviews", func(tx *gorm.DB) *gorm.DB {
					return tx.Order("created_at desc")
				}).
				Preload("Reviews.User").
				First(&event).
				Error; err != nil {
				if errors.Is(gorm.ErrRecordNotFound, err) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": utils.ErrEventNotFound.Error()})
					return
				}
				log.Printf("Error retrieving Event [%s]: %s\n", slugParam, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			event.Derive(time.Now())
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		GET("/events/:slug/reviews", func(ctx *gin.Context) {
			// the route param doubles as the event id for sub-resources
			eventId, err := uuid.Parse(ctx.Param("slug"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var reviews []models.EventReview
			db := db.GetDb()
			if err := db.
				Where(&models.EventReview{EventID: eventId}).
				Preload("User").
				Order("created_at desc").
				Find(&reviews).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			for i := range reviews {
				reviews[i].Derive()
			}
			ctx.JSON(http.StatusOK, gin.H{"results": reviews})
		})
	return g
}

func listEventsByCategory(ctx *gin.Context, category types.EventCategory) {
	var events []models.Event
	db := db.GetDb()
	if err := db.
		Where("is_published = ?", true).
		Where("category = ?", category).
		Order("start_date asc").
		Find(&events).
		Error; err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deriveAll(events, time.Now())
	ctx.JSON(http.StatusOK, gin.H{"results": events})
}

func eventAuthHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/events/create", func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.MustGet("id").(uuid.UUID)
			event, err := utils.CreateNewEvent(&body, userId)
			if err != nil {
				log.Printf("error creating event: %s", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": event.ID, "slug": event.Slug})
		}).
		POST("/events/:slug/reviews", func(ctx *gin.Context) {
			eventId, err := uuid.Parse(ctx.Param("slug"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.CreateReviewRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.MustGet("id").(uuid.UUID)
			db := db.GetDb()
			review := models.EventReview{
				EventID: eventId,
				UserID:  userId,
				Rating:  body.Rating,
				Comment: body.Comment,
			}
			err = db.Transaction(func(tx *gorm.DB) error {
				var count int64
				if err := tx.
					Model(&models.EventReview{}).
					Where(&models.EventReview{EventID: eventId, UserID: userId}).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return errDuplicateReview
				}
				return tx.Create(&review).Error
			})
			if err != nil {
				if errors.Is(err, errDuplicateReview) {
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
					return
				}
				log.Printf("error creating review: %s", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			review.UserName = ctx.GetString("username")
			ctx.JSON(http.StatusCreated, gin.H{"data": review})
		}).
		POST("/events/:slug/favorite", func(ctx *gin.Context) {
			eventId, err := uuid.Parse(ctx.Param("slug"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var event models.Event
			db := db.GetDb()
			if err := db.
				Where(&models.Event{ID: eventId}).
				First(&event).
				Error; err != nil {
				if errors.Is(gorm.ErrRecordNotFound, err) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": utils.ErrEventNotFound.Error()})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			// TODO: persist a FavoriteEvent row and report the real state.
			// Clients currently rely on the hardwired response.
			ctx.JSON(http.StatusOK, gin.H{
				"message":     "Favorite toggled successfully",
				"is_favorite": true,
			})
		})
	return g
}

var errDuplicateReview = errors.New("Review untuk acara ini sudah ada")
