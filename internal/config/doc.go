// Package config loads, normalizes, and validates chmatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file from the working directory,
// and honours environment fallbacks such as COMPANIES_HOUSE_API_KEY. The Config
// type centralizes the registry credentials and pacing, the matching policy
// numbers, and the workbook header aliases.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
