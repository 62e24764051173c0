// Package logger wraps zerolog with the field conventions used across the
// service: a service tag on every line, optional component tags, request and
// user ids lifted from the context, and map based structured fields.
//
//	log := logger.New(&cfg, "fittrack").WithComponent("account")
//	log.Info("user registered", logger.Fields(logger.FieldUserID, u.ID))
//
// Secrets (tokens, password hashes, plaintext passwords) must never be passed
// as fields.
package logger
