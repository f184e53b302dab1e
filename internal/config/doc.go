// Package config provides centralized configuration management for bikereport.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (config.yaml, configs/config.yaml or --config)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern BIKE_<SECTION>_<FIELD>:
//
//	BIKE_LOGGING_LEVEL=debug
//	BIKE_DATASET_URL=https://data.urbansharing.com/bergenbysykkel.no/trips/v1/2024/09.json
//	BIKE_AUTH_DSN=file:data/users.db
//	BIKE_AUTH_SEED_USERS=user1:pass1,user2:pass2
//	BIKE_REPORT_EXPORT_CSV=true
//
// # Path Management
//
// Paths resolves every directory once so the rest of the program never joins
// paths by hand:
//
//	paths, err := config.NewPaths(cfg.Paths)
//	logo := paths.GetAssetPath(cfg.Report.LogoFile)
//	output := paths.GetOutputPath(cfg.Report.FileName)
//
// # Validation
//
// The loaded struct is checked with go-playground/validator tags; an invalid
// value fails Load rather than being silently corrected.
package config
