package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	tableQuestions    = "questions"
	tableReviewItems  = "review_items"
	tableAnswerEvents = "answer_events"
	tableSnapshots    = "snapshots"
)

var (
	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "category_id", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeInt},
		{Name: "tags", Type: field.TypeJSON},
		{Name: "question_text", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "answer_template", Type: field.TypeJSON, Nullable: true},
		{Name: "explanation", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	questionsTable = &schema.Table{
		Name:       tableQuestions,
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "question_category_id", Columns: []*schema.Column{questionsColumns[1]}},
			{Name: "question_difficulty", Columns: []*schema.Column{questionsColumns[2]}},
		},
	}

	// review_items.question_id is a weak reference: items may outlive
	// their question, so there is no foreign key.
	reviewItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "question_id", Type: field.TypeString, Unique: true},
		{Name: "category_id", Type: field.TypeString, Default: ""},
		{Name: "incorrect_count", Type: field.TypeInt, Default: 0},
		{Name: "consecutive_correct_count", Type: field.TypeInt, Default: 0},
		{Name: "status", Type: field.TypeEnum, Enums: []string{"needs_review", "priority_review", "mastered"}, Default: "needs_review"},
		{Name: "priority_score", Type: field.TypeInt, Default: 0},
		{Name: "last_answered_at", Type: field.TypeTime, Nullable: true},
		{Name: "last_reviewed_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	reviewItemsTable = &schema.Table{
		Name:       tableReviewItems,
		Columns:    reviewItemsColumns,
		PrimaryKey: []*schema.Column{reviewItemsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "reviewitem_status", Columns: []*schema.Column{reviewItemsColumns[5]}},
			{Name: "reviewitem_priority_score", Columns: []*schema.Column{reviewItemsColumns[6]}},
			{Name: "reviewitem_last_answered_at", Columns: []*schema.Column{reviewItemsColumns[7]}},
		},
	}

	answerEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "question_id", Type: field.TypeString},
		{Name: "category_id", Type: field.TypeString, Default: ""},
		{Name: "correct", Type: field.TypeBool},
		{Name: "time_ms", Type: field.TypeInt64, Default: 0},
		{Name: "mode", Type: field.TypeString, Default: "practice"},
	}
	answerEventsTable = &schema.Table{
		Name:       tableAnswerEvents,
		Columns:    answerEventsColumns,
		PrimaryKey: []*schema.Column{answerEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answerevent_question_id", Columns: []*schema.Column{answerEventsColumns[4]}},
			{Name: "answerevent_timestamp", Columns: []*schema.Column{answerEventsColumns[2]}},
		},
	}

	snapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "data", Type: field.TypeJSON},
	}
	snapshotsTable = &schema.Table{
		Name:       tableSnapshots,
		Columns:    snapshotsColumns,
		PrimaryKey: []*schema.Column{snapshotsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "snapshot_timestamp", Columns: []*schema.Column{snapshotsColumns[2]}},
		},
	}

	// tables is applied in order by the migrator.
	tables = []*schema.Table{
		questionsTable,
		reviewItemsTable,
		answerEventsTable,
		snapshotsTable,
	}
)
