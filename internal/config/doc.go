// Package config loads navcore configuration with viper.
//
// Values come from defaults, then an optional navcore.{toml,json,yaml}
// file, then NAVCORE_* environment variables (dots become underscores:
// NAVCORE_NAV_MAX_REDIRECTS).
//
// # Configuration File Structure
//
//	[routes]
//	manifest = "routes.toml"        # or s3://bucket/routes.json; empty = built-in table
//	not_found_view = "NotFoundPage"
//	base = "/console"
//
//	[nav]
//	max_redirects = 8
//
//	[server]
//	address = ":8080"
//	allowed_origins = ["https://console.example.com"]
//
//	[bridge]
//	rate = 20
//	burst = 40
//
//	[log]
//	level = "info"
//	format = "json"
//
//	[auth]
//	role = "guest"
//
//	[i18n]
//	lang = "zh"
//
//	[s3]
//	region = "ap-east-1"
package config
