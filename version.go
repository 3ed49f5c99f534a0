package screeningvalidator

// Version is the current version of the screening validator.
const Version = "0.1.0"

// UserAgent returns the user agent string for external calls.
func UserAgent() string {
	return "screening-validator/" + Version
}
