package model

// UserSnapshot is the denormalized user data attached to a reservation at
// read time.
type UserSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RoomSnapshot is the denormalized room data attached to a reservation at
// read time.
type RoomSnapshot struct {
	ID     string    `json:"id"`
	Number string    `json:"number"`
	Type   string    `json:"type"`
	Price  float64   `json:"price"`
	State  RoomState `json:"state"`
}

// EnrichedReservation is a reservation plus user and room snapshots.  The
// snapshots hold placeholder values when a collaborator lookup fails.
type EnrichedReservation struct {
	Reservation
	User UserSnapshot `json:"user"`
	Room RoomSnapshot `json:"room"`
}
