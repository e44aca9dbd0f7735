package core

import "time"

// HTTP client config constants
const (
	HTTPMaxIdleConns          = 100
	HTTPMaxIdleConnsPerHost   = 10
	HTTPMaxConnsPerHost       = 100
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 10 * time.Second
	HTTPExpectContinueTimeout = 5 * time.Second
	HTTPDialTimeout           = 10 * time.Second
	HTTPRequestTimeout        = 5 * time.Minute
)

// Cache config constants
const (
	CacheDefaultCapacity = 1000
	CacheCleanupInterval = 5 * time.Minute
	ModelListCacheTTL    = 30 * time.Second
	CacheKeyVersion      = "v1"
)

// Stats and monitoring constants
const (
	StatsFilePath        = "stats.json"
	MinSaveInterval      = 5 * time.Second
	HistoryBufferSize    = 1000
	HistoryBatchSize     = 100
	HistoryFlushInterval = 100 * time.Millisecond
)

// Response body size limits
const (
	MaxResponseBodySize  = 10 * 1024 * 1024
	MaxScannerBufferSize = 1024 * 1024
)

// Logging config constants
const (
	MaxDebugFilePathLength = 260
)

// File permission constants
const (
	FilePermissionReadWrite = 0644
)

// Default config values
const (
	DefaultConfigPath = "config.yaml"
	DefaultHost       = "0.0.0.0"
	DefaultPort       = "8080"
	DefaultGinMode    = "release"
)

// CORSMaxAge is the Access-Control-Max-Age value in seconds.
const CORSMaxAge = "86400"

// Time format constants
const (
	TimeFormatDateTime = "2006-01-02 15:04:05"
)
