// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the rigtags command line on top of cobra.
//
// The root command runs the tagging pipeline over its arguments. Flags
// override the loaded configuration key by key, so a flag that is not
// given leaves the config file or RIGTAGS_* value in place.
//
// # Commands
//
//   - rigtags [paths...]: write a tag file
//   - list-languages, list-kinds [LANG], list-fields: describe what is tagged
//   - lookup NAME: query the tag file or the SQLite mirror
//   - config show|get|set|keys|init|path: manage the TOML config
//
// # Exit Codes
//
//   - 0: success, including runs where the strict format dropped entries
//   - 1: general error
//   - 2: bad flags or arguments
//   - 3: bad config file or value
//   - 4: the tag file could not be written
//
// # Output
//
// Tables and status lines are styled with lipgloss. Colors follow TTY
// detection, NO_COLOR and FORCE_COLOR. Tag records written to stdout
// are never styled.
package cli
