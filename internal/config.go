package internal

import "time"

// Config is loaded from the environment in cmd/server.
type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=128"`
	NumberOfWorkers      int           `env:"NUMBER_OF_WORKERS,default=4"`
	BatchSize            int           `env:"BATCH_SIZE,default=32"`
	PollInterval         time.Duration `env:"POLL_INTERVAL,default=1s"`
	AttemptTimeout       time.Duration `env:"ATTEMPT_TIMEOUT,default=30s"`
	MaxAttempts          int           `env:"MAX_ATTEMPTS,default=5"`
	BackoffBase          time.Duration `env:"BACKOFF_BASE,default=30s"`
	BackoffCap           time.Duration `env:"BACKOFF_CAP,default=10m"`
	SendRatePerSecond    float64       `env:"SEND_RATE_PER_SECOND,default=10"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST"`
	Port                 int           `env:"PORT,default=8080"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	AppName              string        `env:"APP_NAME,default=comms-hub"`
	SendgridAPIKey       string        `env:"SENDGRID_API_KEY"`
	DefaultFromName      string        `env:"DEFAULT_FROM_NAME,default=Comms Hub"`
	DefaultFromEmail     string        `env:"DEFAULT_FROM_EMAIL,default=no-reply@comms-hub.local"`
}
