package memory

import (
	"time"

	"github.com/authlete/authlete-go-samples/storage"
)

// DemoProfiles returns the profiles the sample servers start with. The
// given_name of each is its subject, the value the authentication callback
// has always answered.
func DemoProfiles() []*storage.Profile {
	updated := time.Date(2014, time.May, 1, 0, 0, 0, 0, time.UTC)

	return []*storage.Profile{
		{
			Subject: "alice",
			Claims: map[string]any{
				"name":        "Alice Liddell",
				"given_name":  "alice",
				"family_name": "Liddell",
				"email":       "alice@example.com",
				"birthdate":   "2000-01-02",
				"locale":      "en-GB",
				"address":     map[string]any{"formatted": "Oxford, United Kingdom"},
			},
			UpdatedAt: updated,
		},
		{
			Subject: "bob",
			Claims: map[string]any{
				"name":        "Bob Smith",
				"given_name":  "bob",
				"family_name": "Smith",
				"locale":      "en-US",
			},
			UpdatedAt: updated,
		},
	}
}
