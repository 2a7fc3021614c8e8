package samples

// ErrorResponse is the JSON body of locally generated errors.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// MeResponse is the body of GET /me.
type MeResponse struct {
	Subject string `json:"subject"`
}

// Saying is the body of GET /saying.
type Saying struct {
	Person string `json:"person"`
	Saying string `json:"saying"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Sayings served by GET /saying.
var Sayings = []Saying{
	{Person: "Albert Einstein", Saying: "A person who never made a mistake never tried anything new."},
	{Person: "John F. Kennedy", Saying: "My fellow Americans, ask not what your country can do for you, ask what you can do for your country."},
	{Person: "Steve Jobs", Saying: "Stay hungry, stay foolish."},
	{Person: "Walt Disney", Saying: "If you can dream it, you can do it."},
	{Person: "Peter Drucker", Saying: "Whenever you see a successful business, someone once made a courageous decision."},
	{Person: "Thomas A. Edison", Saying: "Genius is one percent inspiration and ninety-nine percent perspiration."},
}
