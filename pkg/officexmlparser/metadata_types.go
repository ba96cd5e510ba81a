package officexmlparser

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/johbar/office-metadata-service/pkg/dateparser"
)

// Dialect names the XML vocabulary a Metadata record was decoded from.
type Dialect string

const (
	// DialectNone means no metadata marker element was found
	DialectNone Dialect = ""
	// DialectCoreProperties is the MS Office vocabulary of docProps/core.xml
	DialectCoreProperties Dialect = "core-properties"
	// DialectOdfMeta is the Open Document vocabulary of meta.xml
	DialectOdfMeta Dialect = "odf-meta"
)

// Metadata is the normalized result of decoding a core properties
// or Open Document meta payload. Empty strings and nil values mean the
// field was not present in the source.
type Metadata struct {
	Dialect        Dialect    `json:"dialect,omitempty"`
	Title          string     `json:"title,omitempty"`
	Author         string     `json:"author,omitempty"`
	LastModifiedBy string     `json:"lastModifiedBy,omitempty"`
	Description    string     `json:"description,omitempty"`
	Subject        string     `json:"subject,omitempty"`
	Keywords       string     `json:"keywords,omitempty"`
	Language       string     `json:"language,omitempty"`
	Created        *Timestamp `json:"created,omitempty"`
	Modified       *Timestamp `json:"modified,omitempty"`
	// CustomProperties holds Open Document user-defined fields.
	// It is never set for MS Office core properties.
	CustomProperties CustomProperties `json:"customProperties,omitempty"`
}

// CustomProperties maps property names to their decoded values.
type CustomProperties map[string]TypedValue

// Timestamp is a date/time field of a Metadata record.
// Text that is no valid calendar date is kept as an invalid Timestamp
// rather than being dropped: Valid is false and Raw holds the source text.
type Timestamp struct {
	Time  time.Time
	Raw   string
	Valid bool
}

func newTimestamp(raw string) *Timestamp {
	t, err := dateparser.ToTime(raw)
	return &Timestamp{Time: t, Raw: raw, Valid: err == nil}
}

// String returns the time in RFC3339 format or the raw text if it is invalid.
func (ts Timestamp) String() string {
	if !ts.Valid {
		return ts.Raw
	}
	return ts.Time.Format(time.RFC3339)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.Valid {
		return json.Marshal(ts.Raw)
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*ts = Timestamp{Time: t, Raw: s, Valid: true}
		return nil
	}
	*ts = *newTimestamp(s)
	return nil
}

// InvalidTimestamps returns the names of the date fields that are
// present but could not be parsed.
func (m Metadata) InvalidTimestamps() []string {
	var invalid []string
	if m.Created != nil && !m.Created.Valid {
		invalid = append(invalid, "created")
	}
	if m.Modified != nil && !m.Modified.Valid {
		invalid = append(invalid, "modified")
	}
	return invalid
}

// IsEmpty reports whether no field has been set.
func (m Metadata) IsEmpty() bool {
	return m.Dialect == DialectNone && m.Title == "" && m.Author == "" &&
		m.LastModifiedBy == "" && m.Description == "" && m.Subject == "" &&
		m.Keywords == "" && m.Language == "" && m.Created == nil &&
		m.Modified == nil && m.CustomProperties == nil
}

// Map flattens the record into x-document-* keys, suitable for HTTP headers.
func (m Metadata) Map() map[string]string {
	metadata := make(map[string]string)
	if len(m.Dialect) > 0 {
		metadata["x-document-dialect"] = string(m.Dialect)
	}
	if len(m.Title) > 0 {
		metadata["x-document-title"] = m.Title
	}
	if len(m.Author) > 0 {
		metadata["x-document-author"] = m.Author
	}
	if len(m.LastModifiedBy) > 0 {
		metadata["x-document-last-modified-by"] = m.LastModifiedBy
	}
	if len(m.Description) > 0 {
		metadata["x-document-description"] = m.Description
	}
	if len(m.Subject) > 0 {
		metadata["x-document-subject"] = m.Subject
	}
	if len(m.Keywords) > 0 {
		metadata["x-document-keywords"] = m.Keywords
	}
	if len(m.Language) > 0 {
		metadata["x-document-language"] = m.Language
	}
	if m.Created != nil {
		metadata["x-document-created"] = m.Created.String()
	}
	if m.Modified != nil {
		metadata["x-document-modified"] = m.Modified.String()
	}
	for k, v := range m.CustomProperties.Map() {
		metadata[k] = v
	}
	return metadata
}

// Map flattens the properties into x-document-custom-* keys.
// Names are lowercased; characters not allowed in header names become '-'.
func (p CustomProperties) Map() map[string]string {
	metadata := make(map[string]string, len(p))
	for name, v := range p {
		metadata["x-document-custom-"+headerSafe(name)] = v.String()
	}
	return metadata
}

func headerSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '-'
	}, name)
}
