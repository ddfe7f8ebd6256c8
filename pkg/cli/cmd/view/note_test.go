/* Copyright 2025 Dnote Authors
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

package view

import (
	"bytes"
	stdctx "context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/notable/notable/pkg/assert"
	"github.com/notable/notable/pkg/cli/testutils"
)

func TestViewNote(t *testing.T) {
	ctx, s := testutils.InitOfflineServices(t)
	testutils.Setup1(t, ctx.DB)

	color.NoColor = true
	var buf bytes.Buffer

	err := viewNote(stdctx.Background(), s, &buf, "11", false)
	if err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assert.Equal(t, strings.Contains(got, "milk, eggs"), true, "should contain note content")
	assert.Equal(t, strings.Contains(got, "server id: 11"), true, "should contain the server id")
	assert.Equal(t, strings.Contains(got, "sync status: SYNCED"), true, "should contain the sync status")
}

func TestViewNoteContentOnly(t *testing.T) {
	ctx, s := testutils.InitOfflineServices(t)
	testutils.Setup1(t, ctx.DB)

	var buf bytes.Buffer

	err := viewNote(stdctx.Background(), s, &buf, "-1", true)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, buf.String(), "Grocery list\n\nbread\n", "should contain only note content")
}

func TestViewNoteInvalidID(t *testing.T) {
	_, s := testutils.InitOfflineServices(t)
	var buf bytes.Buffer

	err := viewNote(stdctx.Background(), s, &buf, "not-a-number", false)
	assert.NotEqual(t, err, nil, "should return error for invalid id")
}

func TestViewNoteNotFound(t *testing.T) {
	ctx, s := testutils.InitOfflineServices(t)
	testutils.Setup1(t, ctx.DB)

	testCases := []string{"999", "13"}

	for _, id := range testCases {
		var buf bytes.Buffer

		err := viewNote(stdctx.Background(), s, &buf, id, false)
		assert.NotEqual(t, err, nil, "should return error for note "+id)
	}
}
