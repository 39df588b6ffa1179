package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser       = "user"
	RoleSuperAdmin = "superadmin"
)

// User is the account record. Admin marks a user that has been approved as a
// restaurant owner; Role is the platform role carried by the session token.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Address   string             `bson:"address" json:"address"`
	City      string             `bson:"city" json:"city"`
	Country   string             `bson:"country" json:"country"`
	Contact   string             `bson:"contact" json:"contact"`
	Admin     bool               `bson:"admin" json:"admin"`
	Role      string             `bson:"role,omitempty" json:"role,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserProfile is the user as returned to the client, with the owner request
// status resolved from the owner request record.
type UserProfile struct {
	User
	OwnerRequestStatus OwnerRequestStatus `json:"ownerRequestStatus"`
}

type ProfileInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	Contact string `json:"contact"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID primitive.ObjectID
	Email  string
	Role   string
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

func (a Actor) String() string {
	if a.UserID.IsZero() {
		return "system"
	}
	return a.UserID.Hex()
}
