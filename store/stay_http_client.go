package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/5nufkin/Rarebnb-backend/domain"
	"github.com/5nufkin/Rarebnb-backend/errors"
)

// StayHTTPClient resolves stays from the stay service, with a Redis
// read-through so repeated creations for the same stay skip the call.
type StayHTTPClient struct {
	address string
	client  *http.Client
	cache   domain.StayCache
	cb      *gobreaker.CircuitBreaker
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewStayHTTPClient(host, port string, cache domain.StayCache, httpClient *http.Client, tracer trace.Tracer, logger *logrus.Logger) domain.StayProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &StayHTTPClient{
		address: fmt.Sprintf("http://%s:%s", host, port),
		client:  httpClient,
		cache:   cache,
		cb:      CircuitBreaker("stayService", logger),
		tracer:  tracer,
		logger:  logger,
	}
}

func (sc *StayHTTPClient) GetByID(ctx context.Context, stayID primitive.ObjectID) (*domain.Stay, error) {
	ctx, span := sc.tracer.Start(ctx, "StayHTTPClient.GetByID")
	defer span.End()

	key := "stay:" + stayID.Hex()
	if cached, err := sc.cache.GetCachedValue(ctx, key); err == nil {
		var stay domain.Stay
		if err := json.Unmarshal([]byte(cached), &stay); err == nil {
			return &stay, nil
		}
		sc.logger.Warnf("corrupt cached stay %s, refetching", stayID.Hex())
	}

	result, err := sc.cb.Execute(func() (interface{}, error) {
		return sc.fetch(ctx, stayID)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	stay, ok := result.(*domain.Stay)
	if !ok {
		span.SetStatus(codes.Error, "unexpected stay service result type")
		return nil, errors.NewStoreError("unexpected stay service result type", nil)
	}

	if encoded, err := json.Marshal(stay); err == nil {
		if err := sc.cache.PostCacheData(ctx, key, string(encoded)); err != nil {
			sc.logger.Warnf("cannot cache stay %s: %s", stayID.Hex(), err)
		}
	}

	return stay, nil
}

func (sc *StayHTTPClient) fetch(ctx context.Context, stayID primitive.ObjectID) (*domain.Stay, error) {
	endpoint := fmt.Sprintf("%s/%s", sc.address, stayID.Hex())
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		sc.logger.Errorf("error creating stay request: %s", err)
		return nil, errors.NewStoreError("error creating stay request", err)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(request.Header))

	response, err := sc.client.Do(request)
	if err != nil {
		sc.logger.Errorf("error sending stay request: %s", err)
		return nil, errors.NewStoreError("stay service unreachable", err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFoundError(errors.StayNotFoundError)
	}
	if response.StatusCode != http.StatusOK {
		sc.logger.Errorf("stay service returned an error: %s", response.Status)
		return nil, errors.NewStoreError("stay service returned an error", nil)
	}

	var stay domain.Stay
	if err := json.NewDecoder(response.Body).Decode(&stay); err != nil {
		sc.logger.Errorf("error decoding stay response: %s", err)
		return nil, errors.NewStoreError("error decoding stay response", err)
	}

	return &stay, nil
}

func CircuitBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warnf("Circuit Breaker '%s' changed from '%s' to '%s'", name, from, to)
			},
			IsSuccessful: func(err error) bool {
				// a missing stay is a caller mistake, not an outage
				return err == nil || errors.IsNotFound(err)
			},
		},
	)
}
