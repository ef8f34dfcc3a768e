// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/tfctl/catsync/internal/log"
)

// maxSchemaDepth limits how far into nested objects DumpSchema walks.
const maxSchemaDepth = 1

// DumpSchema writes the sorted set of attr paths found across the items of a
// collection. If w is nil, os.Stdout is used.
func DumpSchema(collection gjson.Result, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	seen := map[string]struct{}{}
	for _, item := range collection.Array() {
		schemaWalker("", item, 0, seen)
	}
	if len(seen) == 0 {
		log.Debug("no attrs found")
		return
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	fmt.Fprintln(w, "Attrs available to --attrs, --filter and --sort:")
	fmt.Fprintln(w, "")
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
}

func schemaWalker(holder string, obj gjson.Result, depth int, seen map[string]struct{}) {
	if !obj.IsObject() {
		return
	}
	obj.ForEach(func(key, value gjson.Result) bool {
		path := key.String()
		if holder != "" {
			path = holder + "." + path
		}
		seen[path] = struct{}{}
		if depth < maxSchemaDepth && value.IsObject() {
			schemaWalker(path, value, depth+1, seen)
		}
		return true
	})
}
