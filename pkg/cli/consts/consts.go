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

// Package consts provides definitions of constants
package consts

var (
	// NotableDirName is the name of the directory containing notable files
	NotableDirName = "notable"
	// NotableDBFileName is a filename for the local SQLite database
	NotableDBFileName = "notable.db"
	// TmpContentFileBase is the base for the filename for a temporary content
	TmpContentFileBase = "NOTABLE_TMPCONTENT"
	// TmpContentFileExt is the extension for the temporary content file
	TmpContentFileExt = "md"
	// ConfigFilename is the name of the config file
	ConfigFilename = "notablerc"

	// SystemAccessToken is the key for the access token in the system table
	SystemAccessToken = "access_token"
	// SystemRefreshToken is the key for the refresh token in the system table
	SystemRefreshToken = "refresh_token"
	// SystemUserID is the key for the id of the signed in user
	SystemUserID = "user_id"
	// SystemUsername is the key for the handle of the signed in user
	SystemUsername = "username"
	// SystemUserName is the key for the display name of the signed in user
	SystemUserName = "user_name"
	// SystemLastSyncAt is the timestamp of the last completed sync
	SystemLastSyncAt = "last_sync_at"
)

// SessionKeys are the system keys that make up a session
var SessionKeys = []string{
	SystemAccessToken,
	SystemRefreshToken,
	SystemUserID,
	SystemUsername,
	SystemUserName,
}
