package startup

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casbin/casbin"
	"github.com/go-redis/redis"
	"github.com/gorilla/mux"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/5nufkin/Rarebnb-backend/casbinAuthorization"
	"github.com/5nufkin/Rarebnb-backend/domain"
	"github.com/5nufkin/Rarebnb-backend/handlers"
	application "github.com/5nufkin/Rarebnb-backend/service"
	"github.com/5nufkin/Rarebnb-backend/startup/config"
	"github.com/5nufkin/Rarebnb-backend/store"
)

type Server struct {
	config *config.Config
}

var Logger = logrus.New()

const (
	LogFilePath = "/app/logs/orders.log"
)

type CustomFormatter struct{}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Data["id"] = generateUniqueID()

	msg := fmt.Sprintf("[%s] [%s] [%s] %s\n",
		entry.Time.Format("2006-01-02T15:04:05Z07:00"),
		entry.Level,
		entry.Data["id"],
		entry.Message,
	)

	return []byte(msg), nil
}

func generateUniqueID() string {
	return fmt.Sprintf("ID-%d", time.Now().UnixNano())
}

func initLogger() {
	writer, err := rotatelogs.New(
		LogFilePath+"_%Y%m%d%H%M",
		rotatelogs.WithRotationTime(3*time.Minute),
	)
	if err != nil {
		Logger.Fatalf("Failed to create rotatelogs hook: %v", err)
	}
	Logger.SetOutput(writer)

	Logger.SetFormatter(&CustomFormatter{})
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
	}
}

func (server *Server) initMongoClient(httpClient *http.Client) *mongo.Client {
	client, err := store.GetClientWithHTTPConfig(server.config.OrderDBHost, server.config.OrderDBPort, httpClient)
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func (server *Server) initRedisClient() *redis.Client {
	return store.GetRedisClient(server.config.StayCacheHost, server.config.StayCachePort)
}

func (server *Server) initOrderStore(client *mongo.Client, tracer trace.Tracer, logger *logrus.Logger) domain.OrderStore {
	return store.NewOrderMongoDBStore(client, tracer, logger)
}

func (server *Server) initStayProvider(redisClient *redis.Client, httpClient *http.Client, tracer trace.Tracer, logger *logrus.Logger) domain.StayProvider {
	cache := store.NewStayRedisCache(redisClient, tracer, logger)
	return store.NewStayHTTPClient(server.config.StayServiceHost, server.config.StayServicePort, cache, httpClient, tracer, logger)
}

func (server *Server) initHostNotifier(httpClient *http.Client, tracer trace.Tracer, logger *logrus.Logger) domain.HostNotifier {
	return store.NewNotificationHTTPClient(server.config.NotificationServiceHost, server.config.NotificationServicePort, httpClient, tracer, logger)
}

func (server *Server) initOrderService(orderStore domain.OrderStore, stays domain.StayProvider, notifier domain.HostNotifier, tracer trace.Tracer, logger *logrus.Logger) *application.OrderService {
	return application.NewOrderService(orderStore, stays, notifier, tracer, logger)
}

func (server *Server) initOrderHandler(service *application.OrderService, tracer trace.Tracer, logger *logrus.Logger) *handlers.OrderHandler {
	return handlers.NewOrderHandler(service, tracer, logger)
}

func (server *Server) Start() {

	initLogger()

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
		},
	}

	mongoClient := server.initMongoClient(httpClient)
	defer func(mongoClient *mongo.Client, ctx context.Context) {
		err := mongoClient.Disconnect(ctx)
		if err != nil {
			log.Println(err)
		}
	}(mongoClient, context.Background())

	redisClient := server.initRedisClient()

	ctx := context.Background()
	exp, err := newExporter(server.config.JaegerAddress)
	if err != nil {
		log.Fatalf("Failed to Initialize Exporter: %v", err)
	}

	tp := newTraceProvider(exp)
	defer func() { _ = tp.Shutdown(ctx) }()
	otel.SetTracerProvider(tp)
	tracer := tp.Tracer("orders_service")
	otel.SetTextMapPropagator(propagation.TraceContext{})

	orderStore := server.initOrderStore(mongoClient, tracer, Logger)
	stayProvider := server.initStayProvider(redisClient, httpClient, tracer, Logger)
	hostNotifier := server.initHostNotifier(httpClient, tracer, Logger)
	orderService := server.initOrderService(orderStore, stayProvider, hostNotifier, tracer, Logger)
	orderHandler := server.initOrderHandler(orderService, tracer, Logger)

	server.start(orderHandler)
}

func (server *Server) start(orderHandler *handlers.OrderHandler) {
	enforcer, err := casbin.NewEnforcerSafe("./rbac_model.conf", "./policy.csv")
	if err != nil {
		log.Fatal(err)
	}
	log.Println("orders service successful init of enforcer")

	router := mux.NewRouter()
	router.Use(MiddlewareContentTypeSet)
	orderHandler.Init(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", server.config.Port),
		Handler: casbinAuthorization.CasbinMiddleware(enforcer)(router),
	}

	wait := time.Second * 15
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Error Shutting Down Server %s", err)
	}
	log.Println("Server Gracefully Stopped")
}

func newExporter(address string) (*jaeger.Exporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(address)))
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func newTraceProvider(exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("orders_service"),
		),
	)

	if err != nil {
		panic(err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	)
}

func MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		rw.Header().Add("Content-Type", "application/json")
		rw.Header().Set("X-Content-Type-Options", "nosniff")
		rw.Header().Set("X-Frame-Options", "DENY")

		next.ServeHTTP(rw, h)
	})
}
