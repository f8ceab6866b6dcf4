package models

// ReminderPayload is the queued payload of a booking reminder task.
type ReminderPayload struct {
	BookingID string `json:"bookingId"`
	FireDate  string `json:"fireDate"`
}

// EmailPayload is the queued payload of an outgoing email.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
