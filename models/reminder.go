package models

// ReminderPayload is the body of a scheduled appointment-reminder
// task. It carries the rendered message fields plus the booking
// reference the handler re-checks at fire time.
type ReminderPayload struct {
	BookingID     string `json:"booking_id"`
	ShopID        string `json:"shop_id"`
	Code          string `json:"code"`
	Phone         string `json:"phone"`
	PhoneNumberID string `json:"phone_number_id"`
	ShopName      string `json:"shop_name"`
	ServiceLabel  string `json:"service_label"`
	BarberName    string `json:"barber_name"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
}
