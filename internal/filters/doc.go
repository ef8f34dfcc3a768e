// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects catalog items with --filter expressions.
//
// A filter is key, operator and target. Filters are comma separated (set
// CATSYNC_FILTER_DELIM for values that contain commas) and an item must match
// all of them.
//
// Operators, each negatable with a leading !:
//
//   - = : exact match
//   - ~ : case-insensitive match
//   - ^ : prefix match
//   - < : less than, numeric when both sides are numbers
//   - > : greater than, numeric when both sides are numbers
//   - @ : substring, or membership for lists and objects
//   - / : regular expression match
//
// Examples:
//
//   - "status=in_stock"
//   - "price>100"
//   - "name!@test"
//   - "tags@sale"
//
// Keys name an attr by its output key (see the attrs package); anything else
// is used as a gjson path into the item. A key with no operator only
// requires the value to be present.
package filters
