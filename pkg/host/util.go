/*
 * Copyright 2025 The plugin-ffi Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package host

import (
	"os"
	"path/filepath"
	"strings"
)

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func normalizeModuleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// moduleNameFromFile derives the logical module name from a candidate file
// path: lower-cased base name without the library extension.
func moduleNameFromFile(path, ext string) string {
	base := filepath.Base(path)
	return normalizeModuleName(base[:len(base)-len(ext)])
}

func hasLibraryExtension(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}

// parseAllowedHosts splits the comma-separated allow-list a module exports.
// The result is non-nil even when empty: a module that exports the symbol
// but lists nobody denies every host.
func parseAllowedHosts(s string) []string {
	hosts := make([]string, 0, 4)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			hosts = append(hosts, part)
		}
	}
	return hosts
}
