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

package diff

import (
	"testing"

	"github.com/notable/notable/pkg/assert"
)

func TestRender(t *testing.T) {
	testCases := []struct {
		s1       string
		s2       string
		expected string
	}{
		{
			s1:       "milk\neggs\n",
			s2:       "milk\neggs\n",
			expected: "  milk\n  eggs\n",
		},
		{
			s1:       "milk\neggs\n",
			s2:       "milk\nbread\n",
			expected: "  milk\n- eggs\n+ bread\n",
		},
		{
			s1:       "",
			s2:       "milk",
			expected: "+ milk\n",
		},
	}

	for _, tc := range testCases {
		assert.Equal(t, Render(tc.s1, tc.s2), tc.expected, "result mismatch")
	}
}

func TestChanged(t *testing.T) {
	assert.Equal(t, Changed("a\nb", "a\nb"), false, "same text")
	assert.Equal(t, Changed("a\nb", "a\nc"), true, "different text")
}
