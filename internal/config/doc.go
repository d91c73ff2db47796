// Package config provides the configuration for folio.
//
// Settings come from three places, later ones overriding earlier:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. FOLIO_ environment variables
//
// # Sections
//
//	[history]
//	max_size = 500          # snapshots kept
//	sample_interval = "1s"  # how long edits are gathered per snapshot
//
//	[logging]
//	level = "info"          # debug, info, warn or error
//
//	[text]
//	normalize = true        # NFC-normalize inserted text
//
// # Environment
//
// FOLIO_HISTORY_MAX_SIZE, FOLIO_HISTORY_SAMPLE_INTERVAL, FOLIO_LOGGING_LEVEL
// (or FOLIO_LOG_LEVEL) and FOLIO_TEXT_NORMALIZE set the matching settings.
//
// # Basic Usage
//
//	cfg, err := config.Load("folio.toml")
//	if err != nil {
//		return err
//	}
//	fmt.Println(cfg.History.MaxSize)
package config
