package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"acadflow-back/internal/models"
)

// currentUser loads the user record for the id the auth middleware stored in
// the context. Aborts the request when the account no longer exists.
func currentUser(c *gin.Context, db *gorm.DB) (*models.User, bool) {
	userID := c.GetUint("userID")

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}
