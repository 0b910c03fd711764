package config

import "os"

type Config struct {
	Port                    string
	OrderDBHost             string
	OrderDBPort             string
	StayCacheHost           string
	StayCachePort           string
	StayServiceHost         string
	StayServicePort         string
	NotificationServiceHost string
	NotificationServicePort string
	JaegerAddress           string
}

func NewConfig() *Config {
	return &Config{
		Port:                    os.Getenv("ORDERS_SERVICE_PORT"),
		OrderDBHost:             os.Getenv("ORDERS_DB_HOST"),
		OrderDBPort:             os.Getenv("ORDERS_DB_PORT"),
		StayCacheHost:           os.Getenv("STAY_CACHE_HOST"),
		StayCachePort:           os.Getenv("STAY_CACHE_PORT"),
		StayServiceHost:         os.Getenv("STAYS_SERVICE_HOST"),
		StayServicePort:         os.Getenv("STAYS_SERVICE_PORT"),
		NotificationServiceHost: os.Getenv("NOTIFICATIONS_SERVICE_HOST"),
		NotificationServicePort: os.Getenv("NOTIFICATIONS_SERVICE_PORT"),
		JaegerAddress:           os.Getenv("JAEGER_ADDRESS"),
	}
}
