package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "outfordelivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// orderTransitions lists, for each status, the statuses an operator may move
// an order to. Forward skips are allowed; nothing leaves a terminal status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusDelivered},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// ParseOrderStatus returns the status named by s, or false when s is not part
// of the order vocabulary.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	_, ok := orderTransitions[status]
	return status, ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Cancellable reports whether a customer may still cancel the order.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// DeliveryDetails is copied into the order at checkout time and never
// re-validated against the user's profile afterwards.
type DeliveryDetails struct {
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email" json:"email"`
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// MaxItemQuantity caps a cart line so totals in minor units stay far from
// int64 overflow.
const MaxItemQuantity = 1000

// CartItem is a snapshot of a menu entry at order time.
type CartItem struct {
	MenuID   string  `bson:"menuId" json:"menuId"`
	Name     string  `bson:"name" json:"name"`
	Image    string  `bson:"image,omitempty" json:"image,omitempty"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
}

type Order struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User              primitive.ObjectID `bson:"user" json:"user"`
	Restaurant        primitive.ObjectID `bson:"restaurant" json:"restaurant"`
	DeliveryDetails   DeliveryDetails    `bson:"deliveryDetails" json:"deliveryDetails"`
	CartItems         []CartItem         `bson:"cartItems" json:"cartItems"`
	TotalAmount       float64            `bson:"totalAmount" json:"totalAmount"`
	Status            OrderStatus        `bson:"status" json:"status"`
	PaymentIntentID   string             `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	CheckoutSessionID string             `bson:"checkoutSessionId,omitempty" json:"checkoutSessionId,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CartTotal sums price x quantity in minor units so that the stored major
// amount converts back to exactly what the processor was asked to charge.
func CartTotal(items []CartItem) float64 {
	var minor int64
	for _, item := range items {
		minor += ToMinorUnits(item.Price) * int64(item.Quantity)
	}
	return FromMinorUnits(minor)
}

type PaymentIntentRequest struct {
	Amount          float64          `json:"amount"`
	CartItems       []CartItem       `json:"cartItems"`
	DeliveryDetails *DeliveryDetails `json:"deliveryDetails"`
	RestaurantID    string           `json:"restaurantId"`
}

type PaymentIntentResult struct {
	ClientSecret string `json:"clientSecret"`
	OrderID      string `json:"orderId"`
}

type CheckoutSessionRequest struct {
	CartItems       []CartItem       `json:"cartItems"`
	DeliveryDetails *DeliveryDetails `json:"deliveryDetails"`
	RestaurantID    string           `json:"restaurantId"`
}

type CheckoutSessionResult struct {
	URL     string `json:"url"`
	OrderID string `json:"orderId"`
}

// OrderEvent describes one status change. It is what the queue carries and
// what the history store keeps.
type OrderEvent struct {
	OrderID       string      `json:"orderId" bson:"orderId"`
	UserID        string      `json:"userId" bson:"userId"`
	RestaurantID  string      `json:"restaurantId" bson:"restaurantId"`
	CustomerEmail string      `json:"customerEmail,omitempty" bson:"-"`
	From          OrderStatus `json:"from" bson:"from"`
	To            OrderStatus `json:"to" bson:"to"`
	Actor         string      `json:"actor" bson:"actor"`
	At            time.Time   `json:"at" bson:"at"`
}

// NewOrderEvent builds the event for order moving from `from` to its current status.
func NewOrderEvent(order *Order, from OrderStatus, actor string, at time.Time) OrderEvent {
	return OrderEvent{
		OrderID:       order.ID.Hex(),
		UserID:        order.User.Hex(),
		RestaurantID:  order.Restaurant.Hex(),
		CustomerEmail: order.DeliveryDetails.Email,
		From:          from,
		To:            order.Status,
		Actor:         actor,
		At:            at.UTC(),
	}
}
