package screeningvalidator

// Screening discriminator codes. Observations in a bundle share a resource
// type and are told apart by a nested coding code.
const (
	ScreeningHearing = "HS"
	ScreeningOral    = "OS"
	ScreeningVision  = "VS"
)

// FlattenResult is the flat projection of a screening bundle. Extraction
// is best-effort: any field may be nil when the corresponding entries are
// absent or structurally odd.
type FlattenResult struct {
	Event       *EventData       `json:"event,omitempty"`
	Participant *ParticipantData `json:"participant,omitempty"`
	HearingRaw  *ScreeningSet    `json:"hearingRaw,omitempty"`
	OralRaw     *ScreeningSet    `json:"oralRaw,omitempty"`
	VisionRaw   *ScreeningSet    `json:"visionRaw,omitempty"`
}

// EventData is the encounter/location/organization composite.
type EventData struct {
	Start        string `json:"start,omitempty"`
	End          string `json:"end,omitempty"`
	Venue        string `json:"venue,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
	GRC          string `json:"grc,omitempty"`
	Constituency string `json:"constituency,omitempty"`
	ProviderName string `json:"providerName,omitempty"`
	ClusterName  string `json:"clusterName,omitempty"`
}

// ParticipantData holds the participant's demographic fields.
type ParticipantData struct {
	NRIC      string `json:"nric,omitempty"`
	Name      string `json:"name,omitempty"`
	Gender    string `json:"gender,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Address   string `json:"address,omitempty"`
}

// ScreeningSet holds the flattened components of one screening observation.
type ScreeningSet struct {
	ScreeningType string            `json:"screeningType"`
	Items         []ObservationItem `json:"items"`
}

// ObservationItem is one flattened observation component. Values holds the
// component's answer split on "|" for multi-select questions, or a single
// element otherwise.
type ObservationItem struct {
	Question QuestionRef `json:"question"`
	Values   []string    `json:"values"`
}

// QuestionRef identifies the question a component answers.
type QuestionRef struct {
	Code    string `json:"code"`
	Display string `json:"display,omitempty"`
}
