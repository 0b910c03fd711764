package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stay is the read-only view of a listing served by the stay service.
// It is queried once, at order creation, to take the snapshots.
type Stay struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Price float64            `json:"price"`
	Host  HostSnapshot       `json:"host"`
}

type StayProvider interface {
	GetByID(ctx context.Context, stayID primitive.ObjectID) (*Stay, error)
}

// HostNotifier tells the notification service about a new order. The
// engine treats delivery as best effort.
type HostNotifier interface {
	NotifyHost(ctx context.Context, byGuestID string, forHostID string, description string) error
}
