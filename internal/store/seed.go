package store

import (
	"fmt"
	"time"

	"civicpulse/internal/clock"
	"civicpulse/internal/models"
)

// SeedUsers returns the demo roster loaded at startup so the ledger and
// leaderboard have subjects before any validation happens. Last-validation
// dates are anchored to now so seeded streaks behave correctly.
func SeedUsers(now time.Time) []models.User {
	avatar := func(seed string) string {
		return fmt.Sprintf("https://api.dicebear.com/8.x/adventurer/svg?seed=%s", seed)
	}
	return []models.User{
		{
			ID: "user-1", Name: "Alex Johnson", AvatarURL: avatar("Alex"),
			Credits: 150, IsPhoneVerified: true,
			LastValidationDate: clock.DateKey(now.AddDate(0, 0, -2)),
			Streak:             2, Neighborhood: "Downtown Core",
		},
		{
			ID: "user-2", Name: "Maria Garcia", AvatarURL: avatar("Maria"),
			Credits: 75, IsPhoneVerified: true,
			Neighborhood: "North Park",
		},
		{
			ID: "user-3", Name: "Chen Wei", AvatarURL: avatar("Chen"),
			Credits: 240, IsPhoneVerified: true,
			LastValidationDate: clock.Yesterday(now),
			Streak:             5, Neighborhood: "Downtown Core",
		},
		{
			ID: "user-4", Name: "Fatima Al-Fassi", AvatarURL: avatar("Fatima"),
			Credits: 30, IsPhoneVerified: false,
			Neighborhood: "West End",
		},
		{
			ID: "user-5", Name: "John Smith", AvatarURL: avatar("John"),
			Credits: 0, IsPhoneVerified: true,
			Neighborhood: "North Park",
		},
	}
}
