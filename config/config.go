package config

import (
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// LoadEnv loads variables from a .env file if one is present. Real
// deployments set the environment directly, so a missing file is not an
// error.
func LoadEnv() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// BookingLocation returns the organization's civil time zone. All "today"
// projections are computed in this zone.
func BookingLocation() *time.Location {
	name := os.Getenv("BOOKING_TZ")
	if name == "" {
		name = "Asia/Bangkok"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}
