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

package app

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// now returns the current time of the app clock at the precision the
// databases and the API keep
func (a *App) now() time.Time {
	return a.Clock.Now().UTC().Round(time.Microsecond)
}

// fieldError wraps a single field error so that every validation failure
// of the app is a validation.Errors
func fieldError(field string, err error) error {
	if err == nil {
		return nil
	}

	return validation.Errors{field: err}
}
