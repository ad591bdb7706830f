package domain

import "time"

// Event is a real-world happening for which one proof-of-participation token
// family is minted. Events are created once and never updated.
type Event struct {
	ID               string    // backend-assigned, opaque
	Name             string    // display name
	Description      string    // free text
	Date             time.Time // when the event takes place
	Creator          string    // wallet address of the issuer (not unique)
	TokenMintAddress string    // token family handle, unique per event
	QRCodeData       string    // claim-link seed, immutable
	MaxAttendees     *int      // optional cap, checked by the claim service
	ImageURL         *string   // optional display image
	CreatedAt        time.Time // set by the backend at creation
}

// NewEvent holds the caller-supplied fields of an Event.
type NewEvent struct {
	Name             string
	Description      string
	Date             time.Time
	Creator          string
	TokenMintAddress string
	QRCodeData       string
	MaxAttendees     *int
	ImageURL         *string
}

// Validate checks the basic shape of the input.
func (e *NewEvent) Validate() error {
	if e == nil {
		return invalid("event", "is required")
	}
	switch {
	case e.Name == "":
		return invalid("name", "must not be empty")
	case e.Description == "":
		return invalid("description", "must not be empty")
	case e.Date.IsZero():
		return invalid("date", "must be set")
	case e.Creator == "":
		return invalid("creator", "must not be empty")
	case e.TokenMintAddress == "":
		return invalid("tokenMintAddress", "must not be empty")
	case e.QRCodeData == "":
		return invalid("qrCodeData", "must not be empty")
	case e.MaxAttendees != nil && *e.MaxAttendees <= 0:
		return invalid("maxAttendees", "must be positive")
	}
	return nil
}

// Build returns the Event for the given identity and creation time.
// Pointer fields are copied so the result does not alias the input.
func (e *NewEvent) Build(id string, createdAt time.Time) *Event {
	return &Event{
		ID:               id,
		Name:             e.Name,
		Description:      e.Description,
		Date:             e.Date.UTC(),
		Creator:          e.Creator,
		TokenMintAddress: e.TokenMintAddress,
		QRCodeData:       e.QRCodeData,
		MaxAttendees:     copyPtr(e.MaxAttendees),
		ImageURL:         copyPtr(e.ImageURL),
		CreatedAt:        createdAt,
	}
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	c := *e
	c.MaxAttendees = copyPtr(e.MaxAttendees)
	c.ImageURL = copyPtr(e.ImageURL)
	return &c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
