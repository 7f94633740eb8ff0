// Package outbox defines the notification requests exchanged over the
// message broker and the publisher/consumer pair that moves them.
// Notifications are fire-and-forget: the request path publishes after a
// successful commit and a delivery failure never affects the booking
// that triggered it.
package outbox

// Recipient kinds.
const (
	RecipientUser      = "user"      // deliver to a single user id
	RecipientBroadcast = "broadcast" // deliver to every active user
)

// Notification templates.
const (
	TemplateBookingCreated   = "booking.created"
	TemplateBookingCancelled = "booking.cancelled"
	TemplatePromotionCreated = "promotion.created"
)

// Notification is a request to notify a user (or all users) using a
// named template.  Params carry the template substitutions; the
// consumer owns the rendering so producers stay free of presentation
// concerns.
type Notification struct {
	RecipientKind string            `json:"recipient_kind"`
	RecipientID   uint64            `json:"recipient_id,omitempty"`
	Template      string            `json:"template"`
	Params        map[string]string `json:"params,omitempty"`
	RequestedAt   string            `json:"requested_at"`
}
