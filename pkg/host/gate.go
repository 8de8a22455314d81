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
	"github.com/addinhost/plugin-ffi/api"
	"github.com/addinhost/plugin-ffi/internal/procident"
)

// UnknownProcess is the sentinel identity reported when the host process
// name cannot be determined.
const UnknownProcess = "unknown"

// ProcessGate authorizes calls against a module's allow-list using the
// operating system's view of the current process. It holds no state and
// needs no locking; the identity is re-detected on every call.
type ProcessGate struct{}

var _ api.Gate = ProcessGate{}

// Verify checks membership of the running process in allowedHosts. A nil
// list means the module declared no restriction and every host passes; a
// non-nil empty list denies all hosts. Identity detection failures yield a
// failed verdict with the UnknownProcess sentinel, never a panic.
func (ProcessGate) Verify(allowedHosts []string) api.SecurityVerdict {
	name, err := procident.Name()
	if err != nil || name == "" {
		internalLogger.warnf("host identity detection failed: %v", err)
		return api.SecurityVerdict{Verified: false, Process: UnknownProcess}
	}
	ident := procident.Normalize(name)
	verdict := api.SecurityVerdict{Process: ident}
	if allowedHosts == nil {
		verdict.Verified = true
		return verdict
	}
	for _, allowed := range allowedHosts {
		if procident.Normalize(allowed) == ident {
			verdict.Verified = true
			break
		}
	}
	return verdict
}
