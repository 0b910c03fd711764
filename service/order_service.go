package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/5nufkin/Rarebnb-backend/domain"
	"github.com/5nufkin/Rarebnb-backend/errors"
)

// OrderService owns the order lifecycle: it validates transitions,
// enforces who may mutate what, and persists partial updates through
// the store. Authorization for posting messages stays at the HTTP
// layer; both message operations only require an authenticated author.
type OrderService struct {
	store    domain.OrderStore
	stays    domain.StayProvider
	notifier domain.HostNotifier
	tracer   trace.Tracer
	logger   *logrus.Logger
}

func NewOrderService(store domain.OrderStore, stays domain.StayProvider, notifier domain.HostNotifier, tracer trace.Tracer, logger *logrus.Logger) *OrderService {
	return &OrderService{
		store:    store,
		stays:    stays,
		notifier: notifier,
		tracer:   tracer,
		logger:   logger,
	}
}

func (service *OrderService) Create(ctx context.Context, request *domain.CreateOrderRequest, actor domain.Actor) (*domain.Order, error) {
	ctx, span := service.tracer.Start(ctx, "OrderService.Create")
	defer span.End()

	if err := request.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	stay, err := service.stays.GetByID(ctx, request.StayID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		service.logger.Errorf("cannot resolve stay %s: %s", request.StayID.Hex(), err)
		return nil, err
	}

	order := &domain.Order{
		Host: domain.HostSnapshot{
			ID:       stay.Host.ID,
			FullName: stay.Host.FullName,
			ImgURL:   stay.Host.ImgURL,
		},
		Guest: actor.Snapshot(),
		Stay: domain.StaySnapshot{
			ID:    stay.ID,
			Name:  stay.Name,
			Price: stay.Price,
		},
		TotalPrice:    request.TotalPrice,
		StartDate:     request.StartDate,
		EndDate:       request.EndDate,
		GuestCountMap: request.GuestCountMap,
		Msgs:          []domain.Message{},
		Status:        domain.Pending,
	}

	saved, err := service.store.Insert(ctx, order)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	description := fmt.Sprintf("New order for %s from %s", saved.Stay.Name, saved.Guest.FullName)
	if err := service.notifier.NotifyHost(ctx, saved.Guest.ID.Hex(), saved.Host.ID.Hex(), description); err != nil {
		// the order is already persisted, notification is best effort
		service.logger.Warnf("cannot notify host %s: %s", saved.Host.ID.Hex(), err)
	}

	return saved, nil
}

func (service *OrderService) GetByID(ctx context.Context, orderID primitive.ObjectID) (*domain.Order, error) {
	ctx, span := service.tracer.Start(ctx, "OrderService.GetByID")
	defer span.End()

	order, err := service.store.Get(ctx, orderID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	order.CreatedAt = order.ID.Timestamp()
	return order, nil
}

func (service *OrderService) GetAll(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	ctx, span := service.tracer.Start(ctx, "OrderService.GetAll")
	defer span.End()

	return service.store.GetAll(ctx, filter)
}

// Update applies a partial mutation to the persisted order. Status and
// msgs always flow; the scheduling and price terms flow only for
// admins and the guest, and only while the persisted order is still
// pending. Returns the applied patch and the order id.
func (service *OrderService) Update(ctx context.Context, order *domain.Order, actor domain.Actor) (*domain.OrderPatch, primitive.ObjectID, error) {
	ctx, span := service.tracer.Start(ctx, "OrderService.Update")
	defer span.End()

	existing, err := service.store.Get(ctx, order.ID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, primitive.NilObjectID, err
	}

	if !domain.CanUpdate(actor, existing) {
		span.SetStatus(codes.Error, errors.NotYourOrderError)
		service.logger.Errorf("actor %s may not update order %s", actor.ID.Hex(), order.ID.Hex())
		return nil, primitive.NilObjectID, errors.NewForbiddenError(errors.NotYourOrderError)
	}

	if existing.Status.Settled() && termsChanged(order, existing) {
		span.SetStatus(codes.Error, errors.OrderSettledError)
		service.logger.Errorf("cannot update processed order %s", order.ID.Hex())
		return nil, primitive.NilObjectID, errors.NewConflictError(errors.OrderSettledError)
	}

	patch := &domain.OrderPatch{
		Status: order.Status,
		Msgs:   order.Msgs,
	}
	if patch.Msgs == nil {
		patch.Msgs = existing.Msgs
	}

	if domain.CanModifyTerms(actor, existing) {
		patch.TotalPrice = &order.TotalPrice
		patch.StartDate = &order.StartDate
		patch.EndDate = &order.EndDate
		patch.GuestCountMap = order.GuestCountMap
	}

	// No version check between the read above and this write: two
	// concurrent updates can both observe pending and both land. The
	// store guarantees atomicity per document mutation only.
	if err := service.store.Patch(ctx, order.ID, patch); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, primitive.NilObjectID, err
	}

	return patch, order.ID, nil
}

func (service *OrderService) Remove(ctx context.Context, orderID primitive.ObjectID, actor domain.Actor) (primitive.ObjectID, error) {
	ctx, span := service.tracer.Start(ctx, "OrderService.Remove")
	defer span.End()

	existing, err := service.store.Get(ctx, orderID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return primitive.NilObjectID, err
	}

	if !domain.CanDelete(actor, existing) {
		span.SetStatus(codes.Error, errors.NotYourOrderError)
		service.logger.Errorf("actor %s may not remove order %s", actor.ID.Hex(), orderID.Hex())
		return primitive.NilObjectID, errors.NewForbiddenError(errors.NotYourOrderError)
	}

	var guestID *primitive.ObjectID
	if !actor.IsAdmin {
		guestID = &actor.ID
	}

	deleted, err := service.store.Delete(ctx, orderID, guestID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return primitive.NilObjectID, err
	}
	if deleted == 0 {
		span.SetStatus(codes.Error, errors.NotYourOrderError)
		service.logger.Errorf("cannot remove order %s: no document matched", orderID.Hex())
		return primitive.NilObjectID, errors.NewConflictError(errors.NotYourOrderError)
	}

	return orderID, nil
}

func (service *OrderService) AddOrderMsg(ctx context.Context, orderID primitive.ObjectID, txt string, author domain.Actor) (*domain.Message, error) {
	ctx, span := service.tracer.Start(ctx, "OrderService.AddOrderMsg")
	defer span.End()

	msg := &domain.Message{
		ID:  uuid.NewString(),
		Txt: txt,
		By:  author.Snapshot(),
	}

	if err := service.store.PushMsg(ctx, orderID, msg); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return msg, nil
}

func (service *OrderService) RemoveOrderMsg(ctx context.Context, orderID primitive.ObjectID, msgID string) (string, error) {
	ctx, span := service.tracer.Start(ctx, "OrderService.RemoveOrderMsg")
	defer span.End()

	if err := service.store.PullMsg(ctx, orderID, msgID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return msgID, nil
}

func termsChanged(requested, existing *domain.Order) bool {
	if requested.TotalPrice != existing.TotalPrice {
		return true
	}
	if !requested.StartDate.Equal(existing.StartDate) || !requested.EndDate.Equal(existing.EndDate) {
		return true
	}
	if len(requested.GuestCountMap) != len(existing.GuestCountMap) {
		return true
	}
	for category, count := range requested.GuestCountMap {
		if existing.GuestCountMap[category] != count {
			return true
		}
	}
	return false
}
