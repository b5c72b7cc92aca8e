package types

type CreateEventRequestBody struct {
	Title             string   `json:"title" binding:"required,max=200"`
	Description       string   `json:"description" binding:"required"`
	Category          string   `json:"category" binding:"required,oneof=festival cosplay concert workshop screening"`
	StartDate         string   `json:"start_date" binding:"required,futuredate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndDate           string   `json:"end_date" binding:"required,futuredate" time_format:"2006-01-02 15:04:05 -07:00"`
	Venue             string   `json:"venue" binding:"required,max=200"`
	Location          string   `json:"location" binding:"required,max=300"`
	Capacity          uint     `json:"capacity" binding:"required,gt=0"`
	Price             string   `json:"price" binding:"required"`
	EarlyBirdPrice    *string  `json:"early_bird_price,omitempty"`
	EarlyBirdDeadline *string  `json:"early_bird_deadline,omitempty"`
	FeaturedImage     *string  `json:"featured_image,omitempty"`
	BannerImage       *string  `json:"banner_image,omitempty"`
	IsFeatured        bool     `json:"is_featured,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Requirements      string   `json:"requirements,omitempty"`
	AgeRestriction    string   `json:"age_restriction,omitempty"`
}

type EventListQuery struct {
	Category        string `form:"category"`
	Status          string `form:"status"`
	IsFeatured      *bool  `form:"is_featured"`
	StartDateAfter  string `form:"start_date_after"`
	StartDateBefore string `form:"start_date_before"`
	PriceMin        string `form:"price_min"`
	PriceMax        string `form:"price_max"`
	Location        string `form:"location"`
	Search          string `form:"search"`
	Ordering        string `form:"ordering"`
}

type EventSearchQuery struct {
	Query    string `form:"q"`
	Category string `form:"category"`
	Location string `form:"location"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

type CreateReviewRequestBody struct {
	Rating  uint   `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

type CreateOrderRequestBody struct {
	EventID       string `json:"event_id" binding:"required,uuid"`
	Quantity      int    `json:"quantity,omitempty" binding:"omitempty,gt=0"`
	CustomerName  string `json:"customer_name" binding:"required,max=200"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerPhone string `json:"customer_phone" binding:"required,max=20"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type RegisterUserRequestBody struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type LoginRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type NewsletterSubscribeRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}
