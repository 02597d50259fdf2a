package model

// RoomState is the availability state owned by the Room Inventory service.
type RoomState string

const (
	RoomAvailable    RoomState = "available"
	RoomOccupied     RoomState = "occupied"
	RoomMaintenance  RoomState = "maintenance"
	RoomReserved     RoomState = "reserved"
	RoomTempReserved RoomState = "temp_reserved"
	RoomUnknown      RoomState = "unknown"
)

// Room is the Room Inventory's view of a room.  The reservation service
// never persists it; it is fetched per request.
type Room struct {
	ID          string    `json:"id"`
	HotelID     string    `json:"hotelId"`
	RoomNumber  string    `json:"roomNumber"`
	RoomType    string    `json:"roomType"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	State       RoomState `json:"state"`
}

// Hotel carries the fields the reservation flows need: a display name and
// the contact address that receives cancellation and payment notices.
type Hotel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
