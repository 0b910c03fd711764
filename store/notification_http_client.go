package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/5nufkin/Rarebnb-backend/domain"
	"github.com/5nufkin/Rarebnb-backend/errors"
)

type notificationPayload struct {
	ByGuestID   string `json:"byGuestId"`
	ForHostID   string `json:"forHostId"`
	Description string `json:"description"`
}

type NotificationHTTPClient struct {
	address string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	tracer  trace.Tracer
	logger  *logrus.Logger
}

func NewNotificationHTTPClient(host, port string, httpClient *http.Client, tracer trace.Tracer, logger *logrus.Logger) domain.HostNotifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &NotificationHTTPClient{
		address: fmt.Sprintf("http://%s:%s", host, port),
		client:  httpClient,
		cb:      CircuitBreaker("notificationService", logger),
		tracer:  tracer,
		logger:  logger,
	}
}

func (nc *NotificationHTTPClient) NotifyHost(ctx context.Context, byGuestID string, forHostID string, description string) error {
	ctx, span := nc.tracer.Start(ctx, "NotificationHTTPClient.NotifyHost")
	defer span.End()

	payload := notificationPayload{
		ByGuestID:   byGuestID,
		ForHostID:   forHostID,
		Description: description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = nc.cb.Execute(func() (interface{}, error) {
		return nil, nc.post(ctx, body)
	})
	return err
}

func (nc *NotificationHTTPClient) post(ctx context.Context, body []byte) error {
	endpoint := fmt.Sprintf("%s/", nc.address)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		nc.logger.Errorf("error creating notification request: %s", err)
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(request.Header))

	response, err := nc.client.Do(request)
	if err != nil {
		nc.logger.Errorf("error sending notification request: %s", err)
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		nc.logger.Errorf("notification service returned an error: %s", response.Status)
		return errors.NewStoreError("notification service returned an error", nil)
	}

	return nil
}
