package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ParseState tells callers apart "no enrichment yet" from "enrichment blob is
// corrupt". A corrupt blob never fails a read; the raw value stays available.
type ParseState string

const (
	ParseStateNone    ParseState = "none"
	ParseStateOK      ParseState = "ok"
	ParseStateCorrupt ParseState = "corrupt"
)

// ParsedResume is the structured enrichment extracted from the uploaded file.
type ParsedResume struct {
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	Skills  []string `json:"skills,omitempty"`
	Summary string   `json:"summary,omitempty"`
}

type Resume struct {
	ID     uint `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"column:user_id;index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	FileName string `gorm:"column:file_name;type:text" json:"file_name"`
	FilePath string `gorm:"column:file_path;type:text" json:"file_path"`

	// Denormalized from parsed content for quick filtering.
	Skills pq.StringArray `gorm:"column:skills;type:text[]" json:"skills,omitempty"`

	// Nullable until the async parse job completes.
	ParsedContent datatypes.JSON `gorm:"column:parsed_content;type:jsonb" json:"parsed_content,omitempty"`

	UploadedAt time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`

	// Derived on read, never stored.
	Parsed     *ParsedResume `gorm:"-" json:"parsed,omitempty"`
	ParseState ParseState    `gorm:"-" json:"parse_state"`
}

func (Resume) TableName() string { return "resumes" }

// InflateParsed decodes parsed_content into Parsed and tags the result.
// Malformed JSON is swallowed: ParseState becomes corrupt and the raw
// bytes stay in ParsedContent.
func (r *Resume) InflateParsed() {
	r.Parsed = nil
	if len(r.ParsedContent) == 0 {
		r.ParseState = ParseStateNone
		return
	}
	var p ParsedResume
	if err := json.Unmarshal(r.ParsedContent, &p); err != nil {
		r.ParseState = ParseStateCorrupt
		return
	}
	r.Parsed = &p
	r.ParseState = ParseStateOK
}
