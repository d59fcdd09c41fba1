// Package config loads service settings from the environment into tagged
// structs using github.com/caarlos0/env/v11.
//
// Every component owns its config struct (stripe.Config, mongo.Config,
// api.Config and so on). The command loads each one with Load:
//
//	var stripeCfg stripe.Config
//	if err := config.Load(&stripeCfg); err != nil {
//		return err
//	}
//
// The first Load reads .env.local and then .env when present
// (github.com/joho/godotenv); variables already set in the process always
// win. Parsed structs are cached per type, so repeated loads are cheap and
// consistent. ResetCache and ForceReloadConfig exist for tests.
package config
