package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OwnerRequestStatus string

const (
	OwnerRequestNone     OwnerRequestStatus = "none"
	OwnerRequestPending  OwnerRequestStatus = "pending"
	OwnerRequestVerified OwnerRequestStatus = "verified"
	OwnerRequestApproved OwnerRequestStatus = "approved"
	OwnerRequestRejected OwnerRequestStatus = "rejected"
)

type OwnerRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User           primitive.ObjectID `bson:"user" json:"user"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	Contact        string             `bson:"contact" json:"contact"`
	RestaurantName string             `bson:"restaurantName" json:"restaurantName"`
	Message        string             `bson:"message,omitempty" json:"message,omitempty"`
	OTPHash        string             `bson:"otpHash,omitempty" json:"-"`
	OTPExpiresAt   time.Time          `bson:"otpExpiresAt,omitempty" json:"-"`
	Status         OwnerRequestStatus `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type OwnerRequestInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Contact        string `json:"contact"`
	RestaurantName string `json:"restaurantName"`
	Message        string `json:"message"`
}
