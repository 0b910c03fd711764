package store

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/5nufkin/Rarebnb-backend/domain"
	"github.com/5nufkin/Rarebnb-backend/errors"
)

const (
	DATABASE   = "order"
	COLLECTION = "orders"
)

const pageSize = 3

type OrderMongoDBStore struct {
	orders *mongo.Collection
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewOrderMongoDBStore(client *mongo.Client, tracer trace.Tracer, logger *logrus.Logger) domain.OrderStore {
	orders := client.Database(DATABASE).Collection(COLLECTION)
	return &OrderMongoDBStore{
		orders: orders,
		tracer: tracer,
		logger: logger,
	}
}

func (store *OrderMongoDBStore) GetAll(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	ctx, span := store.tracer.Start(ctx, "OrderMongoDBStore.GetAll")
	defer span.End()

	criteria := buildCriteria(filter)
	opts := buildFindOptions(filter)

	cursor, err := store.orders.Find(ctx, criteria, opts)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("cannot find orders: %s", err)
		return nil, errors.NewStoreError(errors.DatabaseError, err)
	}
	defer cursor.Close(ctx)

	return decode(ctx, cursor)
}

func (store *OrderMongoDBStore) Get(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	ctx, span := store.tracer.Start(ctx, "OrderMongoDBStore.Get")
	defer span.End()

	filter := bson.M{"_id": id}

	order, err := store.filterOne(ctx, filter)
	if err == mongo.ErrNoDocuments {
		span.SetStatus(codes.Error, errors.OrderNotFoundError)
		return nil, errors.NewNotFoundError(errors.OrderNotFoundError)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("while finding order %s: %s", id.Hex(), err)
		return nil, errors.NewStoreError(errors.DatabaseError, err)
	}
	return order, nil
}

func (store *OrderMongoDBStore) Insert(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	ctx, span := store.tracer.Start(ctx, "OrderMongoDBStore.Insert")
	defer span.End()

	order.ID = primitive.NewObjectID()
	result, err := store.orders.InsertOne(ctx, order)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("cannot insert order: %s", err)
		return nil, errors.NewStoreError(errors.DatabaseError, err)
	}
	order.ID = result.InsertedID.(primitive.ObjectID)
	return order, nil
}

func (store *OrderMongoDBStore) Patch(ctx context.Context, id primitive.ObjectID, patch *domain.OrderPatch) error {
	ctx, span := store.tracer.Start(ctx, "OrderMongoDBStore.Patch")
	defer span.End()

	filter := bson.M{"_id": id}
	update := bson.M{"$set": patch}

	result, err := store.orders.UpdateOne(ctx, filter, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("cannot update order %s: %s", id.Hex(), err)
		return errors.NewStoreError(errors.DatabaseError, err)
	}

	if result.MatchedCount == 0 {
		span.SetStatus(codes.Error, errors.OrderNotFoundError)
		return errors.NewNotFoundError(errors.OrderNotFoundError)
	}

	return nil
}

func (store *OrderMongoDBStore) Delete(ctx context.Context, id primitive.ObjectID, guestID *primitive.ObjectID) (int64, error) {
	ctx, span := store.tracer.Start(ctx, "OrderMongoDBStore.Delete")
	defer span.End()

	criteria := bson.M{"_id": id}
	if guestID != nil {
		criteria["guest._id"] = *guestID
	}

	result, err := store.orders.DeleteOne(ctx, criteria)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("cannot remove order %s: %s", id.Hex(), err)
		return 0, errors.NewStoreError(errors.DatabaseError, err)
	}

	return result.DeletedCount, nil
}

func (store *OrderMongoDBStore) PushMsg(ctx context.Context, orderID primitive.ObjectID, msg *domain.Message) error {
	ctx, span := store.tracer.Start(ctx, "OrderMongoDBStore.PushMsg")
	defer span.End()

	filter := bson.M{"_id": orderID}
	update := bson.M{"$push": bson.M{"msgs": msg}}

	result, err := store.orders.UpdateOne(ctx, filter, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("cannot add order msg %s: %s", orderID.Hex(), err)
		return errors.NewStoreError(errors.DatabaseError, err)
	}

	if result.MatchedCount == 0 {
		span.SetStatus(codes.Error, errors.OrderNotFoundError)
		return errors.NewNotFoundError(errors.OrderNotFoundError)
	}

	return nil
}

func (store *OrderMongoDBStore) PullMsg(ctx context.Context, orderID primitive.ObjectID, msgID string) error {
	ctx, span := store.tracer.Start(ctx, "OrderMongoDBStore.PullMsg")
	defer span.End()

	filter := bson.M{"_id": orderID}
	update := bson.M{"$pull": bson.M{"msgs": bson.M{"id": msgID}}}

	// $pull with no matching element is a no-op, same as the store.
	_, err := store.orders.UpdateOne(ctx, filter, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Errorf("cannot remove order msg %s: %s", orderID.Hex(), err)
		return errors.NewStoreError(errors.DatabaseError, err)
	}

	return nil
}

// buildCriteria accepts the free-text filter but matches no field, a
// quirk kept from the original order collection queries.
func buildCriteria(filter domain.OrderFilter) bson.M {
	criteria := bson.M{
		// "stay.name": bson.M{"$regex": filter.Txt, "$options": "i"},
	}
	return criteria
}

func buildFindOptions(filter domain.OrderFilter) *options.FindOptions {
	opts := options.Find()

	if filter.SortField != "" {
		dir := filter.SortDir
		if dir == 0 {
			dir = 1
		}
		opts.SetSort(bson.D{{Key: filter.SortField, Value: dir}})
	}

	if filter.PageIdx != nil {
		opts.SetSkip(int64(*filter.PageIdx) * pageSize)
		opts.SetLimit(pageSize)
	}

	return opts
}

func (store *OrderMongoDBStore) filterOne(ctx context.Context, filter interface{}) (order *domain.Order, err error) {
	result := store.orders.FindOne(ctx, filter)
	err = result.Decode(&order)
	return
}

func decode(ctx context.Context, cursor *mongo.Cursor) (orders []*domain.Order, err error) {
	for cursor.Next(ctx) {
		var order domain.Order
		err = cursor.Decode(&order)
		if err != nil {
			return
		}
		orders = append(orders, &order)
	}
	err = cursor.Err()
	return
}
