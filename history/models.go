package history

import "time"

// RunModel is the GORM model for the runs table
type RunModel struct {
	ID           string            `gorm:"primaryKey"`
	Owner        string            `gorm:"not null;default:''"`
	DryRun       bool              `gorm:"not null;default:false"`
	StartedAt    time.Time         `gorm:"not null;index:idx_started_at"`
	FinishedAt   time.Time         `gorm:"not null"`
	Applied      int               `gorm:"not null;default:0"`
	Failed       bool              `gorm:"not null;default:false"`
	Error        string            `gorm:"default:''"`
	Repositories []RepositoryModel `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
}

// TableName specifies the table name for GORM
func (RunModel) TableName() string { return "runs" }

// RepositoryModel is the GORM model for the per-repository results of a run
type RepositoryModel struct {
	ID           uint          `gorm:"primaryKey"`
	RunID        string        `gorm:"not null;index:idx_run_id"`
	Name         string        `gorm:"not null"`
	PullRequests int           `gorm:"not null;default:0"`
	Failures     int           `gorm:"not null;default:0"`
	Error        string        `gorm:"default:''"`
	Actions      []ActionModel `gorm:"foreignKey:RepositoryID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (RepositoryModel) TableName() string { return "run_repositories" }

// ActionModel is the GORM model for the actions applied (or planned) in a run
type ActionModel struct {
	ID           uint   `gorm:"primaryKey"`
	RepositoryID uint   `gorm:"not null;index:idx_repository_id"`
	Rule         string `gorm:"not null"`
	PullRequest  int    `gorm:"not null"`
	Kind         string `gorm:"not null;check:kind IN ('add-label','remove-label','comment','close-issue')"`
	Number       int    `gorm:"not null"`
	Label        string `gorm:"default:''"`
	Body         string `gorm:"default:''"`
}

// TableName specifies the table name for GORM
func (ActionModel) TableName() string { return "run_actions" }
