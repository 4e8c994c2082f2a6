package db

import (
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	UpdatedByAI     = "ai"
	UpdatedByManual = "manual"
)

// ChildProfile describes the child the assistant is talking to.
// Profiles are owned by an external onboarding flow and are read-only
// inside the chat pipeline.
type ChildProfile struct {
	ID                string
	UserID            string
	Name              string
	Age               int
	LearningInterests []string
	UsageGoals        []string
	AvatarURL         *string
}

// Turn is one persisted message of a conversation.
type Turn struct {
	ID        string
	ChildID   string
	Role      string
	Content   string
	CreatedAt time.Time
}

// MemorySnapshot is an immutable, timestamped list of facts about a
// child. The newest snapshot per child is the current memory; older
// snapshots are superseded, never edited.
type MemorySnapshot struct {
	ID        string
	ChildID   string
	Facts     []string
	UpdatedBy string
	CreatedAt time.Time
}

// childRow is used for database operations with proper db field mapping.
type childRow struct {
	ID                string  `db:"id"`
	UserID            string  `db:"user_id"`
	Name              string  `db:"name"`
	Age               int     `db:"age"`
	LearningInterests string  `db:"learning_interests"`
	UsageGoals        string  `db:"usage_goals"`
	AvatarURL         *string `db:"avatar_url"`
}

func (c *childRow) ToModel() *ChildProfile {
	interests := make([]string, 0)
	if err := json.Unmarshal([]byte(c.LearningInterests), &interests); err != nil {
		interests = []string{}
	}

	goals := make([]string, 0)
	if err := json.Unmarshal([]byte(c.UsageGoals), &goals); err != nil {
		goals = []string{}
	}

	return &ChildProfile{
		ID:                c.ID,
		UserID:            c.UserID,
		Name:              c.Name,
		Age:               c.Age,
		LearningInterests: interests,
		UsageGoals:        goals,
		AvatarURL:         c.AvatarURL,
	}
}

type turnRow struct {
	ID           string `db:"id"`
	ChildID      string `db:"child_id"`
	Role         string `db:"role"`
	Content      string `db:"content"`
	CreatedAtStr string `db:"created_at"` // Stored as RFC3339Nano string
}

func (t *turnRow) ToModel() *Turn {
	createdAt, _ := time.Parse(time.RFC3339Nano, t.CreatedAtStr)
	return &Turn{
		ID:        t.ID,
		ChildID:   t.ChildID,
		Role:      t.Role,
		Content:   t.Content,
		CreatedAt: createdAt,
	}
}

type memorySnapshotRow struct {
	ID           string `db:"id"`
	ChildID      string `db:"child_id"`
	FactsStr     string `db:"facts"` // Stored as JSON string
	UpdatedBy    string `db:"updated_by"`
	CreatedAtStr string `db:"created_at"`
}

func (m *memorySnapshotRow) ToModel() *MemorySnapshot {
	facts := make([]string, 0)
	if err := json.Unmarshal([]byte(m.FactsStr), &facts); err != nil {
		facts = []string{}
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, m.CreatedAtStr)
	return &MemorySnapshot{
		ID:        m.ID,
		ChildID:   m.ChildID,
		Facts:     facts,
		UpdatedBy: m.UpdatedBy,
		CreatedAt: createdAt,
	}
}
