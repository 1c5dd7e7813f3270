package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/lokapasar/backend/pkg/errors"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100

	cursorSeparator = "|"
)

// Cursor marks a position in a listing ordered by (created_at DESC, id DESC).
// The id is the transaction id string, which breaks ties between rows created
// in the same instant.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Page carries the normalized paging inputs for a list query.
type Page struct {
	Limit  int
	Cursor *Cursor
}

// Encode serializes a cursor into an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorSeparator + c.ID
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by Encode. An empty token yields a nil
// cursor, meaning "start from the newest row".
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}
	parts := strings.SplitN(string(raw), cursorSeparator, 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid cursor")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}
	return &Cursor{CreatedAt: ts, ID: parts[1]}, nil
}

// NewPage normalizes a raw limit and cursor token into a Page.
func NewPage(limit int, token string) (Page, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		return Page{}, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("limit must be at most %d", MaxLimit))
	}
	cursor, err := DecodeCursor(token)
	if err != nil {
		return Page{}, err
	}
	return Page{Limit: limit, Cursor: cursor}, nil
}
