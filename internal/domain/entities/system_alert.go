package entities

import (
	"time"

	"github.com/google/uuid"
)

// AlertSeverity classifies a system alert's urgency.
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// AlertKind identifies which health condition triggered the alert.
type AlertKind string

const (
	AlertHighFailureRate AlertKind = "high_failure_rate"
	AlertBacklogGrowing  AlertKind = "backlog_growing"
	AlertLeaseExpiry     AlertKind = "lease_expiry_storm"
	AlertStorageCap      AlertKind = "storage_cap_exceeded"
)

// SystemAlert is a pipeline-health finding raised by the health sensor and
// consumed by the alert-dispatch sensor.
type SystemAlert struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Kind         AlertKind     `json:"kind" gorm:"type:varchar(32);not null;index"`
	Severity     AlertSeverity `json:"severity" gorm:"type:varchar(16);not null"`
	Message      string        `json:"message" gorm:"type:text;not null"`
	Dispatched   bool          `json:"dispatched" gorm:"default:false;index"`
	DispatchedAt *time.Time    `json:"dispatched_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for GORM.
func (SystemAlert) TableName() string {
	return "system_alerts"
}

// NewSystemAlert builds an undispatched alert record.
func NewSystemAlert(kind AlertKind, severity AlertSeverity, message string) *SystemAlert {
	return &SystemAlert{
		ID:       uuid.New(),
		Kind:     kind,
		Severity: severity,
		Message:  message,
	}
}
