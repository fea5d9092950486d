package driver

import "fmt"

const baseURL = "https://ais.usvisa-info.com"

// SignInURL builds the login page URL for a country code (e.g. "ru-kz").
func SignInURL(countryCode string) string {
	return fmt.Sprintf("%s/%s/niv/users/sign_in", baseURL, countryCode)
}

// AppointmentsURL builds the appointment scheduling page URL.
func AppointmentsURL(countryCode, scheduleID string) string {
	return fmt.Sprintf("%s/%s/niv/schedule/%s/appointment", baseURL, countryCode, scheduleID)
}
