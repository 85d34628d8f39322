package params

import "time"

const (
	ServerBodyLimit    = 1048576 // 1 MiB
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second

	TicketKeyPrefix = "t:"

	ServiceTicketExpiration        = 10 * time.Minute      // single authorization to one service endpoint
	TicketGrantingTicketExpiration = 24 * time.Hour        // login session lifetime
	OfflineTicketExpiration        = 365 * 24 * time.Hour  // ticket granting tickets backing refresh tokens

	ServiceClientSecretLength = 32 // length of service client secret
	TOTPIntervalWindow        = 1  // number of adjacent TOTP periods accepted

	HealthCheckServerAddr = ":3001" // health check server address
)
