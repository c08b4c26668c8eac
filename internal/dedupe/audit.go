package dedupe

import (
	"fmt"
	"strings"
	"time"
)

const noteTimeFormat = "2006-01-02 15:04:05 MST"

// AppendNote returns log with a timestamped note line appended. The trail is
// append-only: existing lines are never rewritten.
func AppendNote(log string, now time.Time, note string) string {
	line := fmt.Sprintf("[%s] %s", now.Format(noteTimeFormat), note)
	if log == "" {
		return line
	}
	return log + "\n" + line
}

func stepNote(step Step) string {
	if step.PreserveEmail != "" {
		return fmt.Sprintf("MERGED: contact %s absorbed into %s. Personal email %s preserved in additional emails.",
			step.Merge, step.Into, step.PreserveEmail)
	}
	return fmt.Sprintf("MERGED: contact %s absorbed into %s.", step.Merge, step.Into)
}

func summaryNote(absorbed int, emails []string) string {
	if len(emails) == 0 {
		return fmt.Sprintf("MERGE SUMMARY: %d duplicate contact(s) absorbed.", absorbed)
	}
	return fmt.Sprintf("MERGE SUMMARY: %d duplicate contact(s) absorbed. Emails preserved: %s.",
		absorbed, strings.Join(emails, ", "))
}
