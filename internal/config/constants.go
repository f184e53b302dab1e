package config

import "time"

// Application constants
const (
	AppName    = "Bike Trips Report"
	AppVersion = "1.0.0"

	// Dataset defaults. Bergen city bikes, September 2024.
	DefaultDatasetURL = "https://data.urbansharing.com/bergenbysykkel.no/trips/v1/2024/09.json"
	DatasetFileName   = "data.xlsx"
	DefaultRowLimit   = 10000

	// Security Constants
	MaxLoginAttempts = 3
	SessionTimeout   = 8 * time.Hour

	// Network Timeouts
	DefaultHTTPTimeout = 60 * time.Second

	// File Paths (relative to the working directory)
	DefaultDataDir   = "data"
	DefaultInputDir  = "data/input"
	DefaultOutputDir = "data/output"
	DefaultAssetsDir = "assets"
	DefaultLogsDir   = "logs"

	ReportFileName = "report.pdf"
	LogoFileName   = "logo.jpg"
)
