// SPDX-License-Identifier: MPL-2.0

// Package config handles alfine configuration using Viper with CUE as the file format.
//
// Configuration is loaded from the file given with --config, else from
// config.cue in the user configuration directory ($XDG_CONFIG_HOME/alfine on
// Linux), else from config.cue in the working directory. Every key can be
// overridden from the environment with the ALFINE_ prefix, dots replaced by
// underscores (ALFINE_CACHE_DIR, ALFINE_ORACLE_COMMAND).
//
// Files are validated against the embedded CUE schema (config_schema.cue)
// before they are merged over the defaults.
package config
