package handlers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/makershowcase/backend/internal/models"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

// Login handles reviewer login
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reviewer models.Reviewer
	if err := h.db.Where("username = ?", input.Username).First(&reviewer).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(reviewer.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Generate JWT token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"reviewer_id": reviewer.ID,
		"username":    reviewer.Username,
		"exp":         time.Now().Add(time.Hour * 72).Unix(), // 72 hours
	})

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   tokenString,
		"reviewer": gin.H{
			"id":       reviewer.ID,
			"username": reviewer.Username,
		},
	})
}

// GetMe returns the authenticated reviewer
func (h *AuthHandler) GetMe(c *gin.Context) {
	reviewerID, exists := c.Get("reviewer_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Reviewer not authenticated"})
		return
	}

	var reviewer models.Reviewer
	if err := h.db.First(&reviewer, reviewerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reviewer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       reviewer.ID,
		"username": reviewer.Username,
	})
}

// SeedReviewer creates the bootstrap reviewer account from REVIEWER_USERNAME /
// REVIEWER_PASSWORD when no account with that username exists yet.
func SeedReviewer(db *gorm.DB) error {
	username := os.Getenv("REVIEWER_USERNAME")
	password := os.Getenv("REVIEWER_PASSWORD")
	if username == "" || password == "" {
		return nil
	}

	var existing models.Reviewer
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	reviewer := models.Reviewer{
		Username: username,
		Password: string(hashedPassword),
	}
	if err := db.Create(&reviewer).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded reviewer account %q", username)
	return nil
}
