package chat

import (
	"time"
)

// AssetType identifies the kind of importable analytics asset.
type AssetType string

const (
	AssetTypeMetric    AssetType = "metric"
	AssetTypeDashboard AssetType = "dashboard"
)

// Chat represents a conversation container within an organization.
// A chat is never physically deleted; only its messages are soft-deleted.
type Chat struct {
	ID                      string     `json:"id" db:"id"`
	Title                   string     `json:"title" db:"title"`
	OrganizationID          string     `json:"organization_id" db:"organization_id"`
	CreatedBy               string     `json:"created_by" db:"created_by"`
	PubliclyAccessible      bool       `json:"publicly_accessible" db:"publicly_accessible"`
	PublicExpiryDate        *time.Time `json:"public_expiry_date,omitempty" db:"public_expiry_date"`
	PubliclyEnabledBy       *string    `json:"publicly_enabled_by,omitempty" db:"publicly_enabled_by"`
	MostRecentFileID        *string    `json:"most_recent_file_id,omitempty" db:"most_recent_file_id"`
	MostRecentFileType      *AssetType `json:"most_recent_file_type,omitempty" db:"most_recent_file_type"`
	MostRecentVersionNumber *int       `json:"most_recent_version_number,omitempty" db:"most_recent_version_number"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`
}

// AssetUpdate is the single-statement chat mutation applied after an
// asset import: new title plus the most-recently-imported-file pointer.
type AssetUpdate struct {
	ChatID        string
	Title         string
	FileID        string
	FileType      AssetType
	VersionNumber int
}
