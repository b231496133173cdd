// Package config loads service configuration with viper.
//
// LoadConfig looks for cmd/<service>/config.yml (or ./config.yml), loads a
// .env file into the environment with godotenv, and binds every environment
// variable onto the nested keys it may stand for, so AUTH_JWT_SECRET fills
// auth.jwt_secret. Flat names such as PORT are mapped with WithEnvAlias.
//
// # Usage
//
//	var cfg Config
//	err := config.LoadConfig("filmotheque", &cfg, config.WithEnvAlias("PORT", "server.port"))
package config
