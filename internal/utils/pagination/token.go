package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// EntryCursor is the position of the last entry of a page ordered by
// posting date, creation time and id, all descending.
type EntryCursor struct {
	PostingDate time.Time
	CreatedAt   time.Time
	ID          string
}

// After reports whether an entry sorts strictly after the cursor in page order.
func (c EntryCursor) After(postingDate, createdAt time.Time, id string) bool {
	if !postingDate.Equal(c.PostingDate) {
		return postingDate.Before(c.PostingDate)
	}
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}
	return id < c.ID
}

// EncodeEntryCursor creates a base64 encoded token from a cursor.
func EncodeEntryCursor(c EntryCursor) string {
	tokenStr := fmt.Sprintf("%s|%s|%s", c.PostingDate.Format(timeFormat), c.CreatedAt.Format(timeFormat), c.ID)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeEntryCursor parses the base64 encoded token back into a cursor.
func DecodeEntryCursor(token string) (EntryCursor, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 || parts[2] == "" {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	postingDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (posting date parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return EntryCursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return EntryCursor{PostingDate: postingDate, CreatedAt: createdAt, ID: parts[2]}, nil
}
