// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tagfile reads tag files back into records.
//
// Parsing follows the record layout the writer produces: the name and the
// input file end at the first two tabs, the address is a line number, a
// search pattern, or both joined by ";", and an optional `;"` introduces
// tab-separated extension fields. Search patterns may contain raw tabs, so
// the address is scanned by delimiter rather than split on tabs.
package tagfile
