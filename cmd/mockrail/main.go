// mockrail is a local stand-in for the railway e-ticket API. It serves
// the same endpoints and error envelopes, with a mutex-guarded seat
// inventory so racing workers can be exercised without touching the
// real service. The OTP is printed to the server log.
package main

import (
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"railbooker/pkg/logger"
)

const demoOTP = "123456"

type server struct {
	inv          *inventory
	log          *logger.Logger
	mobileNumber string
	passwordHash []byte

	mu     sync.Mutex
	tokens map[string]bool
}

func main() {
	log := logger.New()

	mobile := getenv("MOCKRAIL_MOBILE", "01700000000")
	password := getenv("MOCKRAIL_PASSWORD", "password123")
	addr := getenv("MOCKRAIL_ADDR", ":8090")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.WithError(err).Error("failed to hash demo password")
		os.Exit(1)
	}

	s := &server{
		inv:          newInventory([]string{"SNIGDHA-1", "SNIGDHA-2"}, 10),
		log:          log,
		mobileNumber: mobile,
		passwordHash: hash,
		tokens:       make(map[string]bool),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), cors.Default())

	web := engine.Group("/v1.0/web")
	web.POST("/auth/sign-in", s.signIn)

	authed := web.Group("")
	authed.Use(s.authMiddleware())
	authed.GET("/bookings/search-trips-v2", s.searchTrips)
	authed.GET("/bookings/seat-layout", s.seatLayout)
	authed.PATCH("/bookings/reserve-seat", s.reserveSeat)
	authed.POST("/bookings/passenger-details", s.passengerDetails)
	authed.POST("/bookings/verify-otp", s.verifyOTP)
	authed.PATCH("/bookings/confirm", s.confirm)

	log.Info("mock rail API listening", "addr", addr, "mobile", mobile, "otp", demoOTP)
	if err := engine.Run(addr); err != nil {
		log.WithError(err).Error("server failed")
		os.Exit(1)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// apiError writes the e-ticket error envelope
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":     status,
			"messages": []string{message},
		},
	})
}

func (s *server) signIn(c *gin.Context) {
	var req struct {
		MobileNumber string `json:"mobile_number" binding:"required"`
		Password     string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusUnprocessableEntity, "mobile_number and password are required")
		return
	}

	if req.MobileNumber != s.mobileNumber ||
		bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)) != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = true
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"token": token}})
}

func (s *server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			apiError(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		s.mu.Lock()
		ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			apiError(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *server) searchTrips(c *gin.Context) {
	date := c.Query("date_of_journey")
	if date == "" {
		date = time.Now().Format("02-Jan-2006")
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"trains": []gin.H{
				{
					"trip_number":         "MOCK EXPRESS (701)",
					"departure_date_time": date + ", 08:00 am",
					"arrival_date_time":   date + ", 01:30 pm",
					"travel_time":         "05:30",
					"seat_types": []gin.H{
						{
							"type":          "SNIGDHA",
							"trip_id":       7001,
							"trip_route_id": 7101,
							"route_id":      71,
							"fare":          "505",
							"vat_amount":    75.75,
						},
					},
					"boarding_points": []gin.H{
						{
							"trip_point_id": 1,
							"location_name": c.DefaultQuery("from_city", "Dhaka"),
							"location_time": "08:00 am",
							"location_date": date,
						},
					},
				},
			},
		},
	})
}

func (s *server) seatLayout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"seatLayout": s.inv.layout()},
	})
}

func (s *server) reserveSeat(c *gin.Context) {
	var req struct {
		TicketID int `json:"ticket_id" binding:"required"`
		RouteID  int `json:"route_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusUnprocessableEntity, "ticket_id and route_id are required")
		return
	}

	if err := s.inv.reserve(req.TicketID); err != nil {
		apiError(c, http.StatusUnprocessableEntity, "Sorry! this seat is already reserved")
		return
	}

	// Unconfirmed reservations expire the way the real service's do
	go func(id int) {
		time.Sleep(10 * time.Minute)
		s.inv.release(id)
	}(req.TicketID)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"ticket_id": req.TicketID}})
}

func (s *server) passengerDetails(c *gin.Context) {
	s.log.Info("OTP dispatched", "otp", demoOTP)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"success": true}})
}

func (s *server) verifyOTP(c *gin.Context) {
	var req struct {
		OTP string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OTP != demoOTP {
		apiError(c, http.StatusUnprocessableEntity, "OTP verification failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"success": true}})
}

func (s *server) confirm(c *gin.Context) {
	var req struct {
		OTP       string `json:"otp"`
		TicketIDs []int  `json:"ticket_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OTP != demoOTP {
		apiError(c, http.StatusUnprocessableEntity, "invalid confirmation payload")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"redirectUrl": "https://payment.example/" + uuid.NewString(),
		},
	})
}
