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

// Package output provides functions to print informations on the terminal
// in a consistent manner
package output

import (
	"strings"
	"time"

	"github.com/notable/notable/pkg/cli/client"
	"github.com/notable/notable/pkg/cli/database"
	"github.com/notable/notable/pkg/cli/log"
	"github.com/notable/notable/pkg/cli/sync"
)

const timeFormat = "Jan 2, 2006 3:04pm (MST)"

// excerptLength is the number of characters of the description shown in lists
const excerptLength = 40

func excerpt(s string) string {
	line := strings.SplitN(strings.TrimSpace(s), "\n", 2)[0]

	runes := []rune(line)
	if len(runes) <= excerptLength {
		return line
	}

	return string(runes[:excerptLength]) + "..."
}

// statusMark returns a marker for notes that are not yet synced
func statusMark(s database.SyncStatus) string {
	switch s {
	case database.StatusSynced:
		return ""
	case database.StatusSyncError:
		return log.ColorRed.Sprint(" [sync error]")
	default:
		return log.ColorYellow.Sprint(" [pending]")
	}
}

// NoteInfo prints a note information
func NoteInfo(n database.Note) {
	log.Infof("note id: %d\n", n.ID)
	if n.HasServerID() {
		log.Infof("server id: %d\n", *n.ServerID)
	}
	log.Infof("created at: %s\n", n.CreatedAt.Local().Format(timeFormat))
	if !n.UpdatedAt.Equal(n.CreatedAt) {
		log.Infof("updated at: %s\n", n.UpdatedAt.Local().Format(timeFormat))
	}
	if n.CreatorUsername != "" {
		log.Infof("creator: %s (%s)\n", n.CreatorName, n.CreatorUsername)
	}
	log.Infof("sync status: %s\n", n.Status)

	log.Plainf("\n------------------------%s------------------------\n", n.Title)
	log.Plainf("%s", n.Description)
	log.Plain("\n-------------------------------------------------------\n")
}

// NoteContent prints the title and the description of a note
func NoteContent(n database.Note) {
	log.Plainf("%s\n\n%s\n", n.Title, n.Description)
}

// NoteList prints one line per note
func NoteList(notes []database.Note) {
	if len(notes) == 0 {
		log.Info("no notes\n")
		return
	}

	for _, n := range notes {
		log.Printf("(%s) %s%s %s\n",
			log.ColorYellow.Sprintf("%d", n.ID), n.Title, statusMark(n.Status), log.ColorGray.Sprint(excerpt(n.Description)))
	}
}

// RemoteNoteList prints notes as they are on the server
func RemoteNoteList(notes []client.Note) {
	if len(notes) == 0 {
		log.Info("no notes on the server\n")
		return
	}

	for _, n := range notes {
		log.Printf("(%s) %s %s\n",
			log.ColorYellow.Sprintf("server %d", n.ID), n.Title, log.ColorGray.Sprint(excerpt(n.Description)))
	}
}

// SyncResult prints the outcome of a sync pass
func SyncResult(res sync.Result) {
	if res.Pushed() > 0 {
		log.Infof("pushed %d created, %d updated, %d deleted\n", res.Created, res.Updated, res.Deleted)
	}
	if res.Pulled+res.Refreshed > 0 {
		log.Infof("pulled %d new, %d changed\n", res.Pulled, res.Refreshed)
	}
	if res.Skipped > 0 {
		log.Infof("kept %d notes with local changes\n", res.Skipped)
	}
	if res.Failed > 0 {
		log.Warnf("%d notes could not be synced and will be retried\n", res.Failed)
	}
	if res.PullErr != nil {
		log.Warnf("pull failed: %s\n", res.PullErr.Error())
	}
}

// Status prints the number of notes per sync status and the last sync time
func Status(user string, counts map[database.SyncStatus]int, lastSync time.Time) {
	if user == "" {
		log.Warnf("not logged in\n")
	} else {
		log.Infof("logged in as %s\n", user)
	}

	if lastSync.IsZero() {
		log.Infof("last sync: never\n")
	} else {
		log.Infof("last sync: %s\n", lastSync.Local().Format(timeFormat))
	}

	for _, s := range database.Statuses {
		log.Plainf("%-16s %d\n", s.String(), counts[s])
	}
}
