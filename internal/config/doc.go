// Package config provides configuration management for the downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Validation and the mapping from the numeric format option to a
//     quality tier
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Music/Yandex Music
//	// FLAC quality, covers written into tags
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Validation
//
// Command-line overrides are applied on top of the loaded settings, then
// the merged result is checked once:
//
//	settings.Token = *tokenFlag
//	if err := settings.Validate(); err != nil {
//	    // reject before touching the network
//	}
//	tier := settings.Tier()
package config
