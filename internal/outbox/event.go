package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Event types produced by the booking flow. Consumers (notification
// service, session-abandonment tracker) live outside this repository.
const (
	EventJobBooked    = "booking.job.booked.v1"
	EventJobCancelled = "booking.job.cancelled.v1"
)
