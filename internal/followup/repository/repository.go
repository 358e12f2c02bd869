package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"followup_engine_backend/internal/followup/domain"
)

var (
	ErrNotFound = errors.New("lead context not found")
	// ErrStaleArc means the arc position changed between the snapshot and the
	// mutation. The caller should re-evaluate from a fresh snapshot.
	ErrStaleArc = errors.New("escalation arc position is stale")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetLeadContext(ctx context.Context, id uuid.UUID) (domain.LeadContext, error) {
	var lead domain.LeadContext
	err := r.pool.QueryRow(ctx, `
		SELECT id, sender_id, display_name, pipeline_stage, message_count,
			last_inbound_at, last_followup_at, arc_position, followups_no_response,
			disengagement_note, sequence_started_at
		FROM lead_contexts WHERE id = $1
	`, id).Scan(
		&lead.ID, &lead.SenderID, &lead.DisplayName, &lead.PipelineStage, &lead.MessageCount,
		&lead.LastInboundAt, &lead.LastFollowupAt, &lead.ArcPosition, &lead.FollowupsNoResponse,
		&lead.DisengagementNote, &lead.SequenceStartedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LeadContext{}, ErrNotFound
	}
	return lead, err
}

// ListConversation returns the most recent messages of a lead, oldest first.
func (r *Repository) ListConversation(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.ConversationMessage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT role, content, sent_at
		FROM conversation_messages
		WHERE lead_id = $1
		ORDER BY sent_at DESC, id DESC
		LIMIT $2
	`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ConversationMessage, 0, limit)
	for rows.Next() {
		var msg domain.ConversationMessage
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.SentAt); err != nil {
			return nil, err
		}
		items = append(items, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	// The query reads newest first so the LIMIT keeps the tail of the thread.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

// ListDueLeadIDs returns leads eligible for evaluation: not marked disengaged,
// arc not yet terminal, and no follow-up sent within the cooldown window.
// Staleness ordering keeps the longest-waiting leads at the front of a cycle.
func (r *Repository) ListDueLeadIDs(ctx context.Context, now time.Time, cooldown time.Duration, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id
		FROM lead_contexts
		WHERE disengagement_note = ''
			AND arc_position < $1
			AND (last_followup_at IS NULL OR last_followup_at < $2)
		ORDER BY COALESCE(last_followup_at, last_inbound_at, created_at) ASC
		LIMIT $3
	`, domain.ArcMaxPosition, now.Add(-cooldown), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AdvanceEscalationArc moves the arc one position forward and records the
// follow-up send, but only if the persisted position still matches the
// snapshot the decision was made from. A position mismatch returns ErrStaleArc.
func (r *Repository) AdvanceEscalationArc(ctx context.Context, leadID uuid.UUID, expectedPosition int, sentAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lead_contexts
		SET arc_position = LEAST(arc_position + 1, $1),
			followups_no_response = followups_no_response + 1,
			last_followup_at = $2,
			sequence_started_at = COALESCE(sequence_started_at, $2),
			updated_at = now()
		WHERE id = $3 AND arc_position = $4
	`, domain.ArcMaxPosition, sentAt, leadID, expectedPosition)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, leadID)
	}
	return nil
}

// ResetEscalationArc returns a lead to the start of the arc after a reply:
// position back to 1, no-response counter cleared, disengagement note and
// sequence start wiped.
func (r *Repository) ResetEscalationArc(ctx context.Context, leadID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lead_contexts
		SET arc_position = $1,
			followups_no_response = 0,
			disengagement_note = '',
			sequence_started_at = NULL,
			updated_at = now()
		WHERE id = $2
	`, domain.ArcMinPosition, leadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkDisengaged records why the engine stopped contacting a lead. Marked
// leads drop out of ListDueLeadIDs until the arc is reset by a reply.
func (r *Repository) MarkDisengaged(ctx context.Context, leadID uuid.UUID, note string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE lead_contexts
		SET disengagement_note = $1, updated_at = now()
		WHERE id = $2
	`, note, leadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordInbound stores a lead-authored message and refreshes the activity
// columns the session detector reads.
func (r *Repository) RecordInbound(ctx context.Context, leadID uuid.UUID, content string, at time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO conversation_messages (lead_id, role, content, sent_at)
		VALUES ($1, $2, $3, $4)
	`, leadID, domain.RoleUser, content, at); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE lead_contexts
		SET last_inbound_at = $1, message_count = message_count + 1, updated_at = now()
		WHERE id = $2
	`, at, leadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// RecordOutbound stores an engine-authored message alongside the arc advance
// done by AdvanceEscalationArc.
func (r *Repository) RecordOutbound(ctx context.Context, leadID uuid.UUID, content string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversation_messages (lead_id, role, content, sent_at)
		VALUES ($1, $2, $3, $4)
	`, leadID, domain.RoleAssistant, content, at)
	return err
}

func (r *Repository) staleOrMissing(ctx context.Context, leadID uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM lead_contexts WHERE id = $1)`, leadID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStaleArc
}
