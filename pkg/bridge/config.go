package bridge

import (
	"os"
	"strconv"
	"time"
)

// Config holds bridge endpoints. An empty URL or address disables that
// bridge.
type Config struct {
	NATSURL       string
	NATSPrefix    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ShadowPrefix  string
	ShadowTTL     time.Duration
	MQTTURL       string
	MQTTClientID  string
	MQTTPrefix    string
	// MQTTListen starts an embedded broker on this address. The bridge
	// uses it when MQTTURL is empty.
	MQTTListen string
}

// LoadConfig loads bridge configuration from environment variables.
func LoadConfig() Config {
	return Config{
		NATSURL:       getEnv("LFD_NATS_URL", ""),
		NATSPrefix:    getEnv("LFD_NATS_PREFIX", "lfd"),
		RedisAddr:     getEnv("LFD_REDIS_ADDR", ""),
		RedisPassword: getEnv("LFD_REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("LFD_REDIS_DB", 0),
		ShadowPrefix:  getEnv("LFD_SHADOW_PREFIX", "lfd"),
		ShadowTTL:     time.Duration(getEnvAsInt("LFD_SHADOW_TTL_SECONDS", 86400)) * time.Second,
		MQTTURL:       getEnv("LFD_MQTT_URL", ""),
		MQTTClientID:  getEnv("LFD_MQTT_CLIENT_ID", "lfdctl"),
		MQTTPrefix:    getEnv("LFD_MQTT_PREFIX", "lfd"),
		MQTTListen:    getEnv("LFD_MQTT_LISTEN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
