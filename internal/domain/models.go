// Package domain defines the persistence models for call records, teams,
// coaching notes, companies, and assistant conversations. These types are
// mapped with GORM and form the core data layer of the call-insights
// application.
//
// Call records are produced by an external ingestion/analysis pipeline and
// are read-only here; this service never mutates them. The AI-derived JSON
// columns arrive in more than one historical shape, so every JSON column is
// backed by a normalizing type from fields.go that converts whatever the
// store returns into one canonical in-memory form at scan time.
package domain

import (
	"sort"
	"time"

	"gorm.io/gorm"
)

// Deal signal classifications attached to a call by the analysis pipeline.
const (
	DealSignalHealthy  = "healthy"
	DealSignalAtRisk   = "at_risk"
	DealSignalCritical = "critical"
)

// CallRecord represents one analyzed sales call (a "transcript"). Rows are
// created by the external analysis pipeline; this service only reads them.
//
// Fields:
//   - ID: stable UUID primary key (char(36)), the transcript id.
//   - UserID: identifier of the owning rep; indexed for per-member queries.
//   - DurationMinutes: call length in minutes.
//   - AIOverallScore: 0-100 overall score, nil when the pipeline produced
//     none. A call contributes to score aggregates only when this is set.
//   - AICategoryBreakdown: legacy (V1) per-category payload, category ->
//     {score, reason}.
//   - AICategoryScores: current (V2) per-category payload, category -> score.
//   - AIDealRiskAlerts: free-text risk alerts raised for the linked deal.
//   - AIWhatWorked / AIImprovementAreas: structured coaching observations.
//   - DealSignal: coarse deal health (healthy/at_risk/critical).
type CallRecord struct {
	ID              string         `json:"id"               gorm:"type:char(36);primaryKey"`
	UserID          string         `json:"user_id"          gorm:"type:varchar(64);not null;index:idx_user_calls"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null;default:0"`
	AIOverallScore  *float64       `json:"ai_overall_score,omitempty"`
	DealSignal      string         `json:"deal_signal"      gorm:"type:varchar(16)"`
	CreatedAt       time.Time      `json:"created_at"       gorm:"index:idx_user_calls,priority:2"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-"                gorm:"index"`

	// AI analysis payload. All columns are JSON text normalized at scan time.
	AICategoryBreakdown   CategoryBreakdown `json:"ai_category_breakdown,omitempty"   gorm:"type:text"`
	AICategoryScores      CategoryScores    `json:"ai_category_scores,omitempty"      gorm:"type:text"`
	AIDealRiskAlerts      StringList        `json:"ai_deal_risk_alerts,omitempty"     gorm:"type:text"`
	AIWhatWorked          WhatWorkedList    `json:"ai_what_worked,omitempty"          gorm:"type:text"`
	AIImprovementAreas    ImprovementList   `json:"ai_improvement_areas,omitempty"    gorm:"type:text"`
	AIMissedOpportunities StringList        `json:"ai_missed_opportunities,omitempty" gorm:"type:text"`
	AIQuestions           StringList        `json:"ai_questions,omitempty"            gorm:"type:text"`
	AIQualificationGaps   StringList        `json:"ai_qualification_gaps,omitempty"   gorm:"type:text"`
	AISummary             string            `json:"ai_summary,omitempty"              gorm:"type:text"`
	AINextCallGamePlan    string            `json:"ai_next_call_game_plan,omitempty"  gorm:"type:text"`
}

// TableName returns the database table name for CallRecord.
func (CallRecord) TableName() string { return "call_records" }

// CategoryScore is the canonical {category, score} pair emitted after V1/V2
// normalization. All aggregation code consumes this shape only.
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// CategoryScorePairs normalizes the call's category payload into canonical
// {category, score} pairs, sorted by category key for deterministic output.
//
// When both shapes are present the V2 column (ai_category_scores) wins
// outright; the V1 breakdown is only consulted when V2 is absent or empty.
func (c *CallRecord) CategoryScorePairs() []CategoryScore {
	var out []CategoryScore
	if len(c.AICategoryScores) > 0 {
		for k, v := range c.AICategoryScores {
			out = append(out, CategoryScore{Category: k, Score: v})
		}
	} else {
		for k, v := range c.AICategoryBreakdown {
			out = append(out, CategoryScore{Category: k, Score: v.Score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// HasScore reports whether the call carries a usable overall score. NaN is
// treated as absent so it can never poison an average.
func (c *CallRecord) HasScore() bool {
	return c.AIOverallScore != nil && *c.AIOverallScore == *c.AIOverallScore
}

// TeamMember represents a rep or coach. The three profile list columns are
// historically messy: depending on which client wrote them they may hold a
// JSON array, a JSON-encoded string, or a plain comma-separated string.
// StringList folds all of those into []string at scan time.
type TeamMember struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string         `json:"name"       gorm:"type:varchar(255);not null"`
	Email     string         `json:"email"      gorm:"type:varchar(255);not null;index"`
	TeamID    string         `json:"team_id"    gorm:"type:char(36);index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`

	KeyStrengths      StringList `json:"key_strengths,omitempty"      gorm:"type:text"`
	FocusAreas        StringList `json:"focus_areas,omitempty"        gorm:"type:text"`
	AIRecommendations StringList `json:"ai_recommendations,omitempty" gorm:"type:text"`
}

// TableName returns the database table name for TeamMember.
func (TeamMember) TableName() string { return "team_members" }

// Team is a workspace grouping members. Members is a denormalized list of
// member ids mutated by the join/leave flows with plain read-compute-write
// (no version check; concurrent admin edits can lose an update).
type Team struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	TeamName  string         `json:"team_name" gorm:"type:varchar(255);not null"`
	OwnerID   string         `json:"owner"     gorm:"column:owner;type:varchar(64);not null;index"`
	Members   StringList     `json:"members"   gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`
}

// TableName returns the database table name for Team.
func (Team) TableName() string { return "teams" }

// CoachingNote is free-text feedback a coach leaves on a member.
type CoachingNote struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_member_notes"`
	CoachID   string         `json:"coach_id"   gorm:"type:varchar(64);not null;index"`
	Note      string         `json:"note"       gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"index:idx_member_notes,priority:2"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for CoachingNote.
func (CoachingNote) TableName() string { return "coaching_notes" }

// Company is an account that calls can be attributed to.
type Company struct {
	ID          string         `json:"id"           gorm:"type:char(36);primaryKey"`
	CompanyName string         `json:"company_name" gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"            gorm:"index"`
}

// TableName returns the database table name for Company.
func (Company) TableName() string { return "companies" }

// CompanyCall links one call record to one company for account rollups.
type CompanyCall struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	TranscriptID string    `json:"transcript_id" gorm:"type:char(36);not null;index"`
	CompanyID    string    `json:"company_id"    gorm:"type:char(36);not null;index"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for CompanyCall.
func (CompanyCall) TableName() string { return "company_calls" }

// Conversation represents one assistant chat session's persisted thread.
// MessageCount is denormalized and maintained by the session layer: it is
// updated to the latest assigned sequence number after each message write.
//
// Clearing a chat abandons the row (it is never deleted), so MessageCount
// may lag reality when fire-and-forget message writes are lost.
type Conversation struct {
	ID           string         `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       string         `json:"user_id"       gorm:"type:varchar(64);not null;index:idx_user_convs"`
	MessageCount int            `json:"message_count" gorm:"not null;default:0"`
	Metadata     JSONMap        `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"             gorm:"index"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// ConversationMessage is a single utterance within a conversation.
// SequenceNumber starts at 1 and is strictly increasing within one
// conversation; the unique index makes an accidental reuse a hard failure
// rather than silent corruption.
type ConversationMessage struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"type:char(36);not null;uniqueIndex:ux_conv_seq,priority:1"`
	Role           string    `json:"role"            gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content        string    `json:"content"         gorm:"type:text;not null"`
	SequenceNumber int       `json:"sequence_number" gorm:"not null;uniqueIndex:ux_conv_seq,priority:2"`
	Metadata       JSONMap   `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`

	// Conversation is the parent thread. Messages are cascade-deleted if the
	// conversation row is ever removed by an operator.
	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ConversationMessage.
func (ConversationMessage) TableName() string { return "conversation_messages" }
