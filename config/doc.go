// Package config loads service configuration from a YAML file, a .env file
// and the process environment, in that order of increasing precedence.
//
// Every environment variable is bound to the nested keys it could spell, so
// AUTH_JWT_SECRET populates auth.jwt.secret without any explicit mapping:
//
//	var cfg app.Config
//	err := config.LoadConfig("fittrack", &cfg,
//		config.WithEnvAliases(map[string]string{"PORT": "server.port"}))
//
// Config structs follow the ApplyDefaults/Validate convention; LoadConfig
// only fills fields.
package config
