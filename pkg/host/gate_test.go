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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/addinhost/plugin-ffi/internal/procident"
)

func TestGateAllowsDeclaredHost(t *testing.T) {
	name, err := procident.Name()
	assert.Nil(t, err)
	assert.NotEqual(t, "", name)

	gate := ProcessGate{}
	verdict := gate.Verify([]string{name, "someone-else"})
	assert.True(t, verdict.Verified)
	assert.Equal(t, procident.Normalize(name), verdict.Process)
}

func TestGateAllowListIsCaseInsensitive(t *testing.T) {
	name, err := procident.Name()
	assert.Nil(t, err)

	verdict := ProcessGate{}.Verify([]string{strings.ToUpper(name)})
	assert.True(t, verdict.Verified)
}

func TestGateDeniesForeignHost(t *testing.T) {
	verdict := ProcessGate{}.Verify([]string{"definitely-not-this-process"})
	assert.False(t, verdict.Verified)
	assert.NotEqual(t, "", verdict.Process)
}

func TestGateNilListMeansUnrestricted(t *testing.T) {
	verdict := ProcessGate{}.Verify(nil)
	assert.True(t, verdict.Verified)
}

func TestGateEmptyListDeniesEveryHost(t *testing.T) {
	// empty but non-nil: the module exported an allow-list naming nobody
	verdict := ProcessGate{}.Verify([]string{})
	assert.False(t, verdict.Verified)
}

func TestGateVerdictIsFreshEachCall(t *testing.T) {
	gate := ProcessGate{}
	first := gate.Verify(nil)
	second := gate.Verify(nil)
	assert.Equal(t, first, second)
}
