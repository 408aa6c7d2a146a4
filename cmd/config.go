package main

import "time"

type Config struct {
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	JWTSecret                 string        `env:"JWT_SECRET,required=true"`
	LogLevel                  string        `env:"LOG_LEVEL,required=true"`
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
	MaxPayloadBytes           int           `env:"MAX_PAYLOAD_BYTES,default=1048576"`
	RateLimitMax              int           `env:"RATE_LIMIT_MAX,default=60"`
	RateLimitWindow           time.Duration `env:"RATE_LIMIT_WINDOW,default=60s"`
	HeartbeatInterval         time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	LivenessTimeout           time.Duration `env:"LIVENESS_TIMEOUT,default=60s"`
	HealthInterval            time.Duration `env:"HEALTH_INTERVAL,default=60s"`
	SendBufferSize            int           `env:"SEND_BUFFER_SIZE,default=256"`
	HistoryPageSize           *int          `env:"HISTORY_PAGE_SIZE"`
	ModerationCharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
}

// ModerationRune returns the first rune of the configured replacement, so
// operators set a literal character rather than a numeric code point.
func (c Config) ModerationRune() rune {
	for _, r := range c.ModerationCharReplacement {
		return r
	}
	return '*'
}
