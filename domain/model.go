package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	Pending  OrderStatus = "pending"
	Approved OrderStatus = "approved"
	Declined OrderStatus = "declined"
)

func (status OrderStatus) IsValid() bool {
	switch status {
	case Pending, Approved, Declined:
		return true
	}
	return false
}

// Settled reports whether the order left the pending state. Settled
// orders keep their scheduling and price terms forever.
func (status OrderStatus) Settled() bool {
	return status == Approved || status == Declined
}

// HostSnapshot is a denormalized copy of the stay's host, taken at
// order creation and never resynchronized.
type HostSnapshot struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"fullname" json:"fullname"`
	ImgURL   string             `bson:"imgUrl,omitempty" json:"imgUrl,omitempty"`
}

type GuestSnapshot struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	FullName string             `bson:"fullname" json:"fullname"`
}

type StaySnapshot struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Price float64            `bson:"price" json:"price"`
}

type Message struct {
	ID  string        `bson:"id" json:"id"`
	Txt string        `bson:"txt" json:"txt"`
	By  GuestSnapshot `bson:"by" json:"by"`
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Host          HostSnapshot       `bson:"host" json:"host"`
	Guest         GuestSnapshot      `bson:"guest" json:"guest"`
	Stay          StaySnapshot       `bson:"stay" json:"stay"`
	TotalPrice    float64            `bson:"totalPrice" json:"totalPrice"`
	StartDate     time.Time          `bson:"startDate" json:"startDate"`
	EndDate       time.Time          `bson:"endDate" json:"endDate"`
	GuestCountMap map[string]int     `bson:"guestCountMap" json:"guestCountMap"`
	Msgs          []Message          `bson:"msgs" json:"msgs"`
	Status        OrderStatus        `bson:"status" json:"status"`

	// CreatedAt is derived from the ObjectID's embedded timestamp on
	// reads and is never persisted.
	CreatedAt time.Time `bson:"-" json:"createdAt,omitempty"`
}

// OrderPatch is the partial mutation an update persists. Status and
// Msgs are always written; the term fields are written only when set.
type OrderPatch struct {
	Status        OrderStatus    `bson:"status" json:"status"`
	Msgs          []Message      `bson:"msgs" json:"msgs"`
	TotalPrice    *float64       `bson:"totalPrice,omitempty" json:"totalPrice,omitempty"`
	StartDate     *time.Time     `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate       *time.Time     `bson:"endDate,omitempty" json:"endDate,omitempty"`
	GuestCountMap map[string]int `bson:"guestCountMap,omitempty" json:"guestCountMap,omitempty"`
}

// Actor is the authenticated caller. Every lifecycle operation takes
// it as an explicit argument.
type Actor struct {
	ID       primitive.ObjectID `json:"id"`
	FullName string             `json:"fullname"`
	IsAdmin  bool               `json:"isAdmin"`
}

func (actor Actor) Snapshot() GuestSnapshot {
	return GuestSnapshot{
		ID:       actor.ID,
		FullName: actor.FullName,
	}
}

// CanUpdate allows admins and both participants of the order.
func CanUpdate(actor Actor, order *Order) bool {
	return actor.IsAdmin || actor.ID == order.Host.ID || actor.ID == order.Guest.ID
}

// CanModifyTerms allows admins and the guest. The host may drive the
// status but never the price, dates or guest counts.
func CanModifyTerms(actor Actor, order *Order) bool {
	return actor.IsAdmin || actor.ID == order.Guest.ID
}

// CanDelete allows admins and the guest only. The host cannot delete
// an order it can approve.
func CanDelete(actor Actor, order *Order) bool {
	return actor.IsAdmin || actor.ID == order.Guest.ID
}

type CreateOrderRequest struct {
	StayID        primitive.ObjectID `json:"stayId" validate:"required"`
	StartDate     time.Time          `json:"startDate" validate:"required"`
	EndDate       time.Time          `json:"endDate" validate:"required,gtfield=StartDate"`
	GuestCountMap map[string]int     `json:"guestCountMap"`
	TotalPrice    float64            `json:"totalPrice" validate:"gte=0"`
}

func (request *CreateOrderRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(request)
}

// OrderFilter carries the optional listing controls. The text filter
// is accepted but currently matches no field.
type OrderFilter struct {
	Txt       string
	SortField string
	SortDir   int
	PageIdx   *int
}
