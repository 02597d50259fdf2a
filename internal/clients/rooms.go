package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomClient talks to the hotel service, which owns rooms, their
// availability state and hotel contact data.
type RoomClient struct{ c *Client }

// NewRoomClient wraps c, which must point at the hotel service.
func NewRoomClient(c *Client) *RoomClient { return &RoomClient{c: c} }

// roomWire is the hotel service's room representation.  Depending on the
// endpoint the owning hotel arrives either as hotelId or as a nested object.
type roomWire struct {
	ID          string     `json:"id"`
	HotelID     string     `json:"hotelId"`
	Hotel       *hotelWire `json:"hotel"`
	RoomNumber  string     `json:"roomNumber"`
	RoomType    string     `json:"roomType"`
	Price       flexFloat  `json:"price"`
	Description string     `json:"description"`
	State       string     `json:"state"`
}

type hotelWire struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (w roomWire) toModel() *model.Room {
	r := &model.Room{
		ID:          w.ID,
		HotelID:     w.HotelID,
		RoomNumber:  w.RoomNumber,
		RoomType:    w.RoomType,
		Price:       float64(w.Price),
		Description: w.Description,
		State:       model.RoomState(w.State),
	}
	if r.HotelID == "" && w.Hotel != nil {
		r.HotelID = w.Hotel.ID
	}
	return r
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(n)
	return nil
}

// GetRoomByID returns nil, nil when the room does not exist.
func (rc *RoomClient) GetRoomByID(ctx context.Context, id string) (*model.Room, error) {
	var w roomWire
	found, err := rc.c.Do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(id), nil, nil, &w)
	if err != nil || !found {
		return nil, err
	}
	return w.toModel(), nil
}

// GetRoomByNumberAndHotel resolves a human room number within one hotel.
func (rc *RoomClient) GetRoomByNumberAndHotel(ctx context.Context, hotelID, number string) (*model.Room, error) {
	var w roomWire
	path := "/hotels/" + url.PathEscape(hotelID) + "/rooms/number/" + url.PathEscape(number)
	found, err := rc.c.Do(ctx, http.MethodGet, path, nil, nil, &w)
	if err != nil || !found {
		return nil, err
	}
	return w.toModel(), nil
}

// UpdateRoomState sets the room's availability state and returns the
// updated room, or nil when the room does not exist.
func (rc *RoomClient) UpdateRoomState(ctx context.Context, id string, state model.RoomState) (*model.Room, error) {
	var w roomWire
	body := map[string]model.RoomState{"state": state}
	found, err := rc.c.Do(ctx, http.MethodPatch, "/rooms/"+url.PathEscape(id)+"/state", nil, body, &w)
	if err != nil || !found {
		return nil, err
	}
	return w.toModel(), nil
}

func (rc *RoomClient) GetHotelByID(ctx context.Context, id string) (*model.Hotel, error) {
	var w hotelWire
	found, err := rc.c.Do(ctx, http.MethodGet, "/hotels/"+url.PathEscape(id), nil, nil, &w)
	if err != nil || !found {
		return nil, err
	}
	return &model.Hotel{ID: w.ID, Name: w.Name, Email: w.Email}, nil
}
