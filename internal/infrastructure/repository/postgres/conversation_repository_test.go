package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/youthguide/opportunity-assistant/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*ConversationRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ConversationRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestEnsureConversationInsertsAndSelects(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO conversations").
		WithArgs("conv-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT conversation_id, last_user_message").
		WithArgs("conv-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"conversation_id", "last_user_message", "last_assistant_message",
			"last_opportunity_count", "created_at", "updated_at",
		}).AddRow("conv-1", "hi", "hello", 2, now, now))

	conv, err := repo.EnsureConversation(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("EnsureConversation() error = %v", err)
	}
	if conv.ConversationID != "conv-1" || conv.LastOpportunityCount != 2 {
		t.Fatalf("unexpected conversation %+v", conv)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendExchangeCommitsTurnPairAndSummary(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO conversation_turns").
		WithArgs("t1", "conv-1", domain.RoleUser, "any jobs?", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO conversation_turns").
		WithArgs("t2", "conv-1", domain.RoleAssistant, "two options", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE conversations").
		WithArgs("conv-1", "any jobs?", "two options", 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.AppendExchange(context.Background(),
		domain.ConversationTurn{ID: "t1", ConversationID: "conv-1", Role: domain.RoleUser, Content: "any jobs?"},
		domain.ConversationTurn{
			ID: "t2", ConversationID: "conv-1", Role: domain.RoleAssistant,
			Content: "two options", OpportunityIDs: []string{"opp-1", "opp-2"},
		},
	)
	if err != nil {
		t.Fatalf("AppendExchange() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendExchangeRollsBackOnInsertError(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO conversation_turns").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.AppendExchange(context.Background(),
		domain.ConversationTurn{ID: "t1", ConversationID: "conv-1", Role: domain.RoleUser, Content: "hi"},
		domain.ConversationTurn{ID: "t2", ConversationID: "conv-1", Role: domain.RoleAssistant, Content: "hello"},
	)
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendExchangeRejectsMismatchedConversations(t *testing.T) {
	repo, _, done := newRepoWithMock(t)
	defer done()

	err := repo.AppendExchange(context.Background(),
		domain.ConversationTurn{ID: "t1", ConversationID: "conv-1", Role: domain.RoleUser},
		domain.ConversationTurn{ID: "t2", ConversationID: "conv-2", Role: domain.RoleAssistant},
	)
	if err == nil {
		t.Fatalf("expected error for mismatched conversation ids")
	}
}

func TestListRecentTurnsReversesToChronological(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, conversation_id, role, content, opportunity_ids, created_at").
		WithArgs("conv-1", 4).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "conversation_id", "role", "content", "opportunity_ids", "created_at",
		}).
			AddRow("t4", "conv-1", domain.RoleAssistant, "newest", []byte(`["opp-1"]`), base.Add(3*time.Minute)).
			AddRow("t3", "conv-1", domain.RoleUser, "newer", []byte(`[]`), base.Add(2*time.Minute)).
			AddRow("t2", "conv-1", domain.RoleAssistant, "older", []byte(`[]`), base.Add(time.Minute)).
			AddRow("t1", "conv-1", domain.RoleUser, "oldest", []byte(`[]`), base))

	turns, err := repo.ListRecentTurns(context.Background(), "conv-1", 4)
	if err != nil {
		t.Fatalf("ListRecentTurns() error = %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	if turns[0].Content != "oldest" || turns[3].Content != "newest" {
		t.Fatalf("turns not chronological: first=%q last=%q", turns[0].Content, turns[3].Content)
	}
	if len(turns[3].OpportunityIDs) != 1 || turns[3].OpportunityIDs[0] != "opp-1" {
		t.Fatalf("opportunity ids not decoded: %v", turns[3].OpportunityIDs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRecentTurnsZeroLimit(t *testing.T) {
	repo, _, done := newRepoWithMock(t)
	defer done()

	turns, err := repo.ListRecentTurns(context.Background(), "conv-1", 0)
	if err != nil {
		t.Fatalf("ListRecentTurns() error = %v", err)
	}
	if turns != nil {
		t.Fatalf("expected nil for zero limit")
	}
}
