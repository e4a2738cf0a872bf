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

type Follower struct {
	Model
	Login       string    `json:"login" gorm:"column:login;type:varchar(255);not null;uniqueIndex:idx_follower_login"`
	Name        string    `json:"name" gorm:"column:name;type:varchar(255)"`
	Company     string    `json:"company" gorm:"column:company;type:varchar(255)"`
	Blog        string    `json:"blog" gorm:"column:blog;type:varchar(255)"`
	Email       string    `json:"email" gorm:"column:email;type:varchar(255)"`
	Bio         string    `json:"bio" gorm:"column:bio;type:text"`
	PublicRepos int       `json:"public_repos" gorm:"column:public_repos;default:0"`
	Followers   int       `json:"followers" gorm:"column:followers;default:0"`
	Following   int       `json:"following" gorm:"column:following;default:0"`
	JoinedAt    string    `json:"joined_at" gorm:"column:joined_at;type:varchar(16)"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func NewFollower(config *cfg.Config, logger log.Logger, db *db.Mysql) (*Follower, error) {
	follower := &Follower{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return follower, nil
}

func (f *Follower) TableName() string {
	return "followers"
}

// CreateBatch upsert một loạt follower messages vào database
func (f *Follower) CreateBatch(messages []FollowerMessage) error {
	db, err := f.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	followers := make([]Follower, 0, len(messages))
	now := time.Now()

	for _, msg := range messages {
		followers = append(followers, Follower{
			Login:       TruncateString(msg.Login, 250),
			Name:        TruncateString(msg.Name, 250),
			Company:     TruncateString(msg.Company, 250),
			Blog:        TruncateString(msg.Blog, 250),
			Email:       TruncateString(msg.Email, 250),
			Bio:         msg.Bio,
			PublicRepos: msg.PublicRepos,
			Followers:   msg.Followers,
			Following:   msg.Following,
			JoinedAt:    msg.CreatedAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "login"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "company", "blog", "email", "bio",
				"public_repos", "followers", "following", "joined_at", "updated_at",
			}),
		}).CreateInBatches(followers, 100)

		if result.Error != nil {
			return fmt.Errorf("failed to batch create followers: %w", result.Error)
		}
		return nil
	})
}
