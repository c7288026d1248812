package models

import "time"

// RatingTarget discriminates the two reviewable entity kinds.
type RatingTarget string

const (
	TargetProvider RatingTarget = "provider"
	TargetService  RatingTarget = "service"
)

// Review is a user's rating of a provider and/or one of its services. A
// review is verified when it cites a delivered booking between the author
// and the target. The provider_id and service_id fields are omitted when
// empty so the per-target uniqueness indexes only apply to reviews that
// actually name that target.
type Review struct {
	ID         string    `bson:"id" json:"id"`
	UserID     string    `bson:"user_id" json:"userId"`
	ProviderID string    `bson:"provider_id,omitempty" json:"providerId,omitempty"`
	ServiceID  string    `bson:"service_id,omitempty" json:"serviceId,omitempty"`
	BookingID  string    `bson:"booking_id,omitempty" json:"bookingId,omitempty"`
	Rating     int       `bson:"rating" json:"rating"`
	Comment    string    `bson:"comment,omitempty" json:"comment,omitempty"`
	IsVerified bool      `bson:"is_verified" json:"isVerified"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

// ReviewInput is the submission payload. The author comes from the
// authenticated session, never from the body.
type ReviewInput struct {
	UserID     string `json:"-"`
	ProviderID string `json:"providerId"`
	ServiceID  string `json:"serviceId"`
	BookingID  string `json:"bookingId"`
	Rating     int    `json:"rating" binding:"required"`
	Comment    string `json:"comment"`
}

// RatingAggregate is the derived rating summary for one target. With zero
// reviews AverageRating is null and ReviewCount is 0; otherwise it is the
// mean of the current ratings rounded to one decimal place.
type RatingAggregate struct {
	TargetID      string       `bson:"target_id" json:"targetId"`
	TargetKind    RatingTarget `bson:"target_kind" json:"targetKind"`
	AverageRating *float64     `bson:"average_rating" json:"averageRating"`
	ReviewCount   int64        `bson:"review_count" json:"reviewCount"`
	UpdatedAt     time.Time    `bson:"updated_at" json:"updatedAt"`
}
