package booking

import "github.com/cx-tal-miterani/flight-seat-booking/internal/models"

// SeedPassengers returns the blank passenger forms shown at checkout. The first
// passenger is prefilled with the account's username.
func SeedPassengers(user *models.User, n int) []models.Passenger {
	if n < 0 {
		n = 0
	}
	passengers := make([]models.Passenger, n)
	for i := range passengers {
		passengers[i] = models.Passenger{
			Title:          "Mr",
			Gender:         "male",
			Nationality:    "US",
			MealPreference: "none",
		}
	}
	if n > 0 && user != nil {
		passengers[0].FirstName = user.Username
	}
	return passengers
}

func SeedContact(user *models.User) models.ContactDetails {
	if user == nil {
		return models.ContactDetails{}
	}
	return models.ContactDetails{Email: user.Email, Phone: user.Phone}
}
