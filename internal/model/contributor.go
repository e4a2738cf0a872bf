package model

import (
	"fmt"
	"time"

	"github.com/thep200/github-harvester/cfg"
	"github.com/thep200/github-harvester/pkg/db"
	"github.com/thep200/github-harvester/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Contributor struct {
	Model
	Login         string    `json:"login" gorm:"column:login;type:varchar(255);not null;uniqueIndex:idx_contributor_repo"`
	Contributions int       `json:"contributions" gorm:"column:contributions;default:0"`
	ProfileURL    string    `json:"profile_url" gorm:"column:profile_url;type:varchar(255)"`
	RepoFullName  string    `json:"repo_full_name" gorm:"column:repo_full_name;type:varchar(255);not null;uniqueIndex:idx_contributor_repo"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func NewContributor(config *cfg.Config, logger log.Logger, db *db.Mysql) (*Contributor, error) {
	contributor := &Contributor{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return contributor, nil
}

func (c *Contributor) TableName() string {
	return "contributors"
}

// CreateBatch upsert một loạt contributor messages vào database
func (c *Contributor) CreateBatch(messages []ContributorMessage) error {
	db, err := c.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	contributors := make([]Contributor, 0, len(messages))
	now := time.Now()

	for _, msg := range messages {
		contributors = append(contributors, Contributor{
			Login:         TruncateString(msg.Login, 250),
			Contributions: msg.Contributions,
			ProfileURL:    TruncateString(msg.ProfileURL, 250),
			RepoFullName:  TruncateString(msg.RepoFullName, 250),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "login"}, {Name: "repo_full_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"contributions", "profile_url", "updated_at",
			}),
		}).CreateInBatches(contributors, 100)

		if result.Error != nil {
			return fmt.Errorf("failed to batch create contributors: %w", result.Error)
		}
		return nil
	})
}
