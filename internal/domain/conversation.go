package domain

import "time"

// UserState is the persisted per-user record: bounded history plus the
// carry-over context of each domain dialogue. A nil context is absent.
type UserState struct {
	UserID     string         `json:"userId" bson:"_id"`
	Name       string         `json:"name" bson:"name"`
	History    []HistoryEntry `json:"history" bson:"history"`
	Visa       *VisaContext   `json:"visaContext,omitempty" bson:"visa_context,omitempty"`
	Flight     *FlightContext `json:"flightContext,omitempty" bson:"flight_context,omitempty"`
	Hotel      *HotelContext  `json:"hotelContext,omitempty" bson:"hotel_context,omitempty"`
	CreatedAt  time.Time      `json:"createdAt" bson:"created_at"`
	LastSeenAt time.Time      `json:"lastSeenAt" bson:"last_seen_at"`
	Version    int64          `json:"version" bson:"version"`
}

// AppendHistory appends entries and keeps only the newest limit items.
func (u *UserState) AppendHistory(limit int, entries ...HistoryEntry) {
	u.History = append(u.History, entries...)
	if limit > 0 && len(u.History) > limit {
		u.History = append([]HistoryEntry(nil), u.History[len(u.History)-limit:]...)
	}
}
