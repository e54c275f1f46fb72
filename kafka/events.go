package kafka

import "time"

// ReviewSubmittedEvent represents a newly submitted stall review
type ReviewSubmittedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ReviewID  uint      `json:"review_id"`
	StallID   uint      `json:"stall_id"`
	AuthorID  uint      `json:"author_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeReviewSubmitted = "review.submitted"
)

// Kafka topics
const (
	TopicReviewSubmitted = "review-submitted"
)
