package seeds

import (
	"fmt"
	"log"
	"os"

	"github.com/GeoAttend/GA-Backend/internal/auth"
	"github.com/GeoAttend/GA-Backend/internal/db"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedController provisions the class controller account from environment
// credentials. Idempotent: an existing username is left untouched.
func SeedController() error {
	username := os.Getenv("CONTROLLER_USER")
	password := os.Getenv("CONTROLLER_PASS")
	displayName := os.Getenv("CONTROLLER_DISPLAY_NAME")
	if username == "" || password == "" {
		return fmt.Errorf("CONTROLLER_USER and CONTROLLER_PASS must be set")
	}

	var existing auth.User
	if err := db.DB.First(&existing, "username = ?", username).Error; err == nil {
		log.Printf("[seeds] controller %q already present, skipping", username)
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash controller password: %w", err)
	}

	user := auth.User{
		UserID:         uuid.NewString(),
		Username:       username,
		HashedPassword: string(hashed),
		Role:           "controller",
		DisplayName:    displayName,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return fmt.Errorf("create controller: %w", err)
	}

	log.Printf("[seeds] controller %q created", username)
	return nil
}
