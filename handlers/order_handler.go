package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/5nufkin/Rarebnb-backend/authorization"
	"github.com/5nufkin/Rarebnb-backend/domain"
	"github.com/5nufkin/Rarebnb-backend/errors"
	application "github.com/5nufkin/Rarebnb-backend/service"
)

type OrderHandler struct {
	service *application.OrderService
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewOrderHandler(service *application.OrderService, tracer trace.Tracer, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		tracer:  tracer,
		logger:  logger,
	}
}

func (handler *OrderHandler) Init(router *mux.Router) {
	router.Use(ExtractTraceInfoMiddleware)
	router.HandleFunc("/", handler.GetOrders).Methods("GET")
	router.HandleFunc("/", handler.AddOrder).Methods("POST")
	router.HandleFunc("/{id}", handler.GetOrder).Methods("GET")
	router.HandleFunc("/{id}", handler.UpdateOrder).Methods("PUT")
	router.HandleFunc("/{id}", handler.RemoveOrder).Methods("DELETE")
	router.HandleFunc("/{id}/msg", handler.AddOrderMsg).Methods("POST")
	router.HandleFunc("/{id}/msg/{msgId}", handler.RemoveOrderMsg).Methods("DELETE")
}

func (handler *OrderHandler) GetOrders(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "OrderHandler.GetOrders")
	defer span.End()

	filter := parseOrderFilter(req)

	orders, err := handler.service.GetAll(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	jsonResponse(orders, writer)
}

func (handler *OrderHandler) GetOrder(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "OrderHandler.GetOrder")
	defer span.End()

	orderID, err := orderIDFromRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, "Invalid order ID", http.StatusBadRequest)
		return
	}

	order, err := handler.service.GetByID(ctx, orderID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, err)
		return
	}
	jsonResponse(order, writer)
}

func (handler *OrderHandler) AddOrder(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "OrderHandler.AddOrder")
	defer span.End()

	actor, err := authorization.ActorFromRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusUnauthorized)
		return
	}

	var request domain.CreateOrderRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		handler.logger.Errorf("cannot decode order payload: %s", err)
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := handler.service.Create(ctx, &request, actor)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, err)
		return
	}
	jsonResponse(saved, writer)
}

func (handler *OrderHandler) UpdateOrder(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "OrderHandler.UpdateOrder")
	defer span.End()

	actor, err := authorization.ActorFromRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusUnauthorized)
		return
	}

	orderID, err := orderIDFromRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, "Invalid order ID", http.StatusBadRequest)
		return
	}

	existing, err := handler.service.GetByID(ctx, orderID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, err)
		return
	}

	var updatePayload map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&updatePayload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	if err := mergeOrderPayload(updatePayload, existing); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	patch, id, err := handler.service.Update(ctx, existing, actor)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, err)
		return
	}

	jsonResponse(map[string]interface{}{
		"orderToSave": patch,
		"_id":         id.Hex(),
	}, writer)
}

func (handler *OrderHandler) RemoveOrder(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "OrderHandler.RemoveOrder")
	defer span.End()

	actor, err := authorization.ActorFromRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusUnauthorized)
		return
	}

	orderID, err := orderIDFromRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, "Invalid order ID", http.StatusBadRequest)
		return
	}

	removedID, err := handler.service.Remove(ctx, orderID, actor)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, err)
		return
	}
	jsonResponse(removedID.Hex(), writer)
}

func (handler *OrderHandler) AddOrderMsg(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "OrderHandler.AddOrderMsg")
	defer span.End()

	actor, err := authorization.ActorFromRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusUnauthorized)
		return
	}

	orderID, err := orderIDFromRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, "Invalid order ID", http.StatusBadRequest)
		return
	}

	var payload struct {
		Txt string `json:"txt"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := handler.service.AddOrderMsg(ctx, orderID, payload.Txt, actor)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, err)
		return
	}
	jsonResponse(msg, writer)
}

func (handler *OrderHandler) RemoveOrderMsg(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "OrderHandler.RemoveOrderMsg")
	defer span.End()

	orderID, err := orderIDFromRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(writer, "Invalid order ID", http.StatusBadRequest)
		return
	}

	msgID := mux.Vars(req)["msgId"]

	removedID, err := handler.service.RemoveOrderMsg(ctx, orderID, msgID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		writeError(writer, err)
		return
	}
	jsonResponse(removedID, writer)
}

func orderIDFromRequest(req *http.Request) (primitive.ObjectID, error) {
	vars := mux.Vars(req)
	return primitive.ObjectIDFromHex(vars["id"])
}

func parseOrderFilter(req *http.Request) domain.OrderFilter {
	query := req.URL.Query()

	filter := domain.OrderFilter{
		Txt:       query.Get("txt"),
		SortField: query.Get("sortField"),
	}
	if dir, err := strconv.Atoi(query.Get("sortDir")); err == nil {
		filter.SortDir = dir
	}
	if idx, err := strconv.Atoi(query.Get("pageIdx")); err == nil {
		filter.PageIdx = &idx
	}
	return filter
}

// mergeOrderPayload lays the update payload over the persisted order.
// Identity and snapshot fields never change after creation, so their
// keys are dropped before decoding.
func mergeOrderPayload(payload map[string]interface{}, order *domain.Order) error {
	for key := range payload {
		switch key {
		case "id", "_id", "host", "guest", "stay", "createdAt":
			delete(payload, key)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			stringToObjectIDHookFunc(),
		),
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           order,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(payload)
}

func stringToObjectIDHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() == reflect.String && to == reflect.TypeOf(primitive.ObjectID{}) {
			return primitive.ObjectIDFromHex(data.(string))
		}
		return data, nil
	}
}

func statusForError(err error) int {
	switch {
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsForbidden(err):
		return http.StatusForbidden
	case errors.IsConflict(err):
		return http.StatusConflict
	case errors.IsStore(err):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeError(writer http.ResponseWriter, err error) {
	http.Error(writer, err.Error(), statusForError(err))
}

func jsonResponse(value interface{}, writer http.ResponseWriter) {
	err := json.NewEncoder(writer).Encode(value)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}
}

func ExtractTraceInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
