package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStore interface {
	GetAll(ctx context.Context, filter OrderFilter) ([]*Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Order, error)
	Insert(ctx context.Context, order *Order) (*Order, error)
	Patch(ctx context.Context, id primitive.ObjectID, patch *OrderPatch) error
	// Delete removes the order, additionally scoped to the owning
	// guest when guestID is non-nil. Returns the deleted count.
	Delete(ctx context.Context, id primitive.ObjectID, guestID *primitive.ObjectID) (int64, error)
	PushMsg(ctx context.Context, orderID primitive.ObjectID, msg *Message) error
	PullMsg(ctx context.Context, orderID primitive.ObjectID, msgID string) error
}
