package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"otakufest/src/db"
	"otakufest/src/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type HandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	mock   sqlmock.Sqlmock
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqldb}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func (s *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	registerValidators()
}

func (s *HandlerTestSuite) SetupTest() {
	gdb, mock := newMockDB(s.T())
	db.NewDB(gdb)
	s.mock = mock

	router := setupRouter()
	publicRoutes(router)
	guestRoutes(router)
	authorizedRoutes(router)
	s.router = router
}

func (s *HandlerTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *HandlerTestSuite) request(method, target, body string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func eventColumns() []string {
	return []string{
		"id", "title", "description", "category", "status",
		"start_date", "end_date", "venue", "location", "capacity",
		"price", "slug", "is_featured", "is_published",
		"created_at", "updated_at",
	}
}

func (s *HandlerTestSuite) eventRow(title string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(eventColumns()).AddRow(
		uuid.New().String(), title, "Festival anime terbesar", "festival", "upcoming",
		now.Add(48*time.Hour), now.Add(72*time.Hour), "JCC Senayan", "Jakarta", 500,
		"150000.00", "anime-festival-jakarta", true, true,
		now, now,
	)
}

func (s *HandlerTestSuite) TestSearchEvents() {
	s.mock.ExpectQuery(`SELECT \* FROM "events"`).
		WillReturnRows(s.eventRow("Anime Festival Jakarta"))

	w := s.request(http.MethodGet, "/api/v1/events/search?q=festival", "", "")

	s.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Equal(int64(1), gjson.Get(body, "#").Int())
	s.Equal("Anime Festival Jakarta", gjson.Get(body, "0.title").String())
	s.Equal("150000", gjson.Get(body, "0.current_price").String())
	s.False(gjson.Get(body, "0.is_early_bird_active").Bool())
}

func (s *HandlerTestSuite) TestListEventsFiltered() {
	s.mock.ExpectQuery(`SELECT \* FROM "events"`).
		WillReturnRows(s.eventRow("Cosplay Night"))

	w := s.request(http.MethodGet, "/api/v1/events?category=cosplay&ordering=start_date", "", "")

	s.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Equal(int64(1), gjson.Get(body, "count").Int())
	s.Equal("Cosplay Night", gjson.Get(body, "results.0.title").String())
}

func (s *HandlerTestSuite) TestEventStats() {
	counts := []int64{12, 7, 3, 2, 4, 2, 1}
	for _, count := range counts {
		s.mock.ExpectQuery(`SELECT count\(\*\) FROM "events"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
	}

	w := s.request(http.MethodGet, "/api/v1/events/stats", "", "")

	s.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.Equal(int64(12), gjson.Get(body, "total_events").Int())
	s.Equal(int64(7), gjson.Get(body, "upcoming_events").Int())
	s.Equal(int64(3), gjson.Get(body, "categories.festival").Int())
	s.Equal(int64(1), gjson.Get(body, "categories.screening").Int())
}

func (s *HandlerTestSuite) TestRegisterDuplicateUsername() {
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	body := `{"username":"sakura","email":"sakura@example.com","password":"rahasia-sekali"}`
	w := s.request(http.MethodPost, "/api/v1/users/register", body, "")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Username sudah digunakan", gjson.Get(w.Body.String(), "error").String())
}

func (s *HandlerTestSuite) TestRegisterCreatesProfile() {
	userId := uuid.New()
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userId.String()))
	s.mock.ExpectQuery(`INSERT INTO "user_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "otaku_level"}).AddRow(uuid.New().String(), "newbie"))
	s.mock.ExpectCommit()

	body := `{"username":"sakura","email":"sakura@example.com","password":"rahasia-sekali","first_name":"Sakura"}`
	w := s.request(http.MethodPost, "/api/v1/users/register", body, "")

	s.Equal(http.StatusCreated, w.Code)
	resp := w.Body.String()
	s.Equal("Registrasi berhasil", gjson.Get(resp, "message").String())
	s.Equal("sakura", gjson.Get(resp, "user.username").String())
}

func (s *HandlerTestSuite) TestEventDetailNotFound() {
	s.mock.ExpectQuery(`SELECT \* FROM "events"`).
		WillReturnRows(sqlmock.NewRows(eventColumns()))

	w := s.request(http.MethodGet, "/api/v1/events/acara-yang-tidak-ada", "", "")

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Acara tidak ditemukan", gjson.Get(w.Body.String(), "error").String())
}

func (s *HandlerTestSuite) TestCreateReviewDuplicate() {
	userId := uuid.New()
	user := models.User{ID: userId, Username: "budi", Email: "budi@example.com"}
	token, err := issueToken(&user)
	s.Require().NoError(err)

	s.expectAuthLookup(userId)
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "event_reviews"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectRollback()

	body := `{"rating":5,"comment":"Acaranya keren banget"}`
	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/events/%s/reviews", uuid.New()), body, token)

	s.Equal(http.StatusConflict, w.Code)
	s.Equal("Review untuk acara ini sudah ada", gjson.Get(w.Body.String(), "error").String())
}

func (s *HandlerTestSuite) userRow(id uuid.UUID, username, password string) *sqlmock.Rows {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(s.T(), err)
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "username", "email", "password", "created_at", "updated_at"}).
		AddRow(id.String(), username, username+"@example.com", string(hashed), now, now)
}

func (s *HandlerTestSuite) TestLogin() {
	userId := uuid.New()
	s.mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(s.userRow(userId, "sakura", "rahasia-sekali"))

	w := s.request(http.MethodPost, "/api/v1/users/login", `{"username":"sakura","password":"rahasia-sekali"}`, "")

	s.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.NotEmpty(gjson.Get(body, "token").String())
	s.Equal("sakura", gjson.Get(body, "user.username").String())
}

func (s *HandlerTestSuite) TestLoginWrongPassword() {
	userId := uuid.New()
	s.mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(s.userRow(userId, "sakura", "rahasia-sekali"))

	w := s.request(http.MethodPost, "/api/v1/users/login", `{"username":"sakura","password":"salah"}`, "")

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Username atau password salah", gjson.Get(w.Body.String(), "error").String())
}

func (s *HandlerTestSuite) orderRow(orderId, userId uuid.UUID, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "order_number", "total_amount", "status",
		"customer_name", "customer_email", "customer_phone",
		"created_at", "updated_at",
	}).AddRow(
		orderId.String(), userId.String(), models.NumberFromID("ORD", orderId), "455000.00", status,
		"Budi Santoso", "budi@example.com", "081234567890",
		now, now,
	)
}

func (s *HandlerTestSuite) expectAuthLookup(userId uuid.UUID) {
	s.mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(s.userRow(userId, "budi", "rahasia-sekali"))
}

func (s *HandlerTestSuite) expectConfirmPayment(orderId, userId uuid.UUID, status string) {
	s.expectAuthLookup(userId)
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "ticket_orders"`).
		WillReturnRows(s.orderRow(orderId, userId, status))
	s.mock.ExpectExec(`UPDATE "ticket_orders" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(`UPDATE "tickets" SET`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	s.mock.ExpectCommit()
}

func (s *HandlerTestSuite) TestConfirmPayment() {
	userId := uuid.New()
	orderId := uuid.New()
	user := models.User{ID: userId, Username: "budi", Email: "budi@example.com"}
	token, err := issueToken(&user)
	s.Require().NoError(err)

	s.expectConfirmPayment(orderId, userId, "pending")
	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/tickets/confirm-payment/%s", orderId), "", token)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Pembayaran berhasil dikonfirmasi", gjson.Get(w.Body.String(), "message").String())

	// confirming again succeeds even though the order is already completed
	s.expectConfirmPayment(orderId, userId, "completed")
	w = s.request(http.MethodPost, fmt.Sprintf("/api/v1/tickets/confirm-payment/%s", orderId), "", token)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestConfirmPaymentNotOwned() {
	userId := uuid.New()
	user := models.User{ID: userId, Username: "budi", Email: "budi@example.com"}
	token, err := issueToken(&user)
	s.Require().NoError(err)

	s.expectAuthLookup(userId)
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "ticket_orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	s.mock.ExpectRollback()

	w := s.request(http.MethodPost, fmt.Sprintf("/api/v1/tickets/confirm-payment/%s", uuid.New()), "", token)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Pesanan tidak ditemukan", gjson.Get(w.Body.String(), "error").String())
}

func orderBody(eventId uuid.UUID, quantity int) string {
	return fmt.Sprintf(`{
		"event_id": %q,
		"quantity": %d,
		"customer_name": "Budi Santoso",
		"customer_email": "budi@example.com",
		"customer_phone": "081234567890",
		"payment_method": "gopay"
	}`, eventId, quantity)
}

func (s *HandlerTestSuite) TestCreateOrderEventNotFound() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "events"`).
		WillReturnRows(sqlmock.NewRows(eventColumns()))
	s.mock.ExpectRollback()

	w := s.request(http.MethodPost, "/api/v1/tickets/create-order", orderBody(uuid.New(), 2), "")

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Acara tidak ditemukan", gjson.Get(w.Body.String(), "error").String())
}

func (s *HandlerTestSuite) TestCreateOrderSoldOut() {
	now := time.Now()
	eventId := uuid.New()
	eventRow := sqlmock.NewRows(eventColumns()).AddRow(
		eventId.String(), "Konser Anisong", "Konser spesial", "concert", "upcoming",
		now.Add(24*time.Hour), now.Add(30*time.Hour), "Istora", "Jakarta", 2,
		"250000.00", "konser-anisong", false, true,
		now, now,
	)
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT \* FROM "events"`).WillReturnRows(eventRow)
	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	s.mock.ExpectRollback()

	w := s.request(http.MethodPost, "/api/v1/tickets/create-order", orderBody(eventId, 1), "")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Tiket sudah habis", gjson.Get(w.Body.String(), "error").String())
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
