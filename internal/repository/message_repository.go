package repository

import (
	"context"
	"time"

	"salonhub-backend/internal/domain"
)

// MessageRepository stores the two inboxes: branch admins write to
// branchMessages (read by the super admin) and the super admin writes to
// adminMessages addressed to one branch.
type MessageRepository struct {
	Store Fetcher
}

type SendMessageInput struct {
	Content           string
	SenderID          string
	SenderName        string
	SenderRole        domain.AdminRole
	SenderBranchID    string
	RecipientBranchID string
}

// OutboxCollection is where a sender with role writes.
func OutboxCollection(role domain.AdminRole) string {
	if role == domain.RoleSuperAdmin {
		return CollectionAdminMessages
	}
	return CollectionBranchMessages
}

// InboxQuery selects the messages a reader with role and branchID receives.
func InboxQuery(role domain.AdminRole, branchID string) Query {
	if role == domain.RoleSuperAdmin {
		return Query{Collection: CollectionBranchMessages, OrderBy: "timestamp"}
	}
	return Query{Collection: CollectionAdminMessages, OrderBy: "timestamp"}.
		Where("recipientBranchId", OpEqual, branchID)
}

func (r MessageRepository) Send(ctx context.Context, in SendMessageInput) (*domain.Message, error) {
	id, err := r.Store.Create(ctx, OutboxCollection(in.SenderRole), map[string]any{
		"content":           in.Content,
		"senderId":          in.SenderID,
		"senderName":        in.SenderName,
		"senderRole":        string(in.SenderRole),
		"senderBranchId":    in.SenderBranchID,
		"recipientBranchId": in.RecipientBranchID,
		"timestamp":         ServerTimestamp,
		"read":              false,
		"readBy":            []any{},
		"status":            string(domain.MessageSent),
	})
	if err != nil {
		return nil, err
	}
	return &domain.Message{
		ID:                id,
		Content:           in.Content,
		SenderID:          in.SenderID,
		SenderName:        in.SenderName,
		SenderRole:        in.SenderRole,
		SenderBranchID:    in.SenderBranchID,
		RecipientBranchID: in.RecipientBranchID,
		Timestamp:         time.Now().UTC(),
		Status:            domain.MessageSent,
	}, nil
}

// Inbox returns the reader's messages sorted by timestamp, oldest first.
func (r MessageRepository) Inbox(ctx context.Context, role domain.AdminRole, branchID string) ([]domain.Message, error) {
	docs, err := r.Store.Fetch(ctx, InboxQuery(role, branchID))
	if err != nil {
		return nil, err
	}
	items := make([]domain.Message, 0, len(docs))
	for _, d := range docs {
		items = append(items, domain.DecodeMessage(d.ID, d.Data))
	}
	return items, nil
}

// Get loads a message from the inbox of a reader with role.
func (r MessageRepository) Get(ctx context.Context, role domain.AdminRole, id string) (*domain.Message, error) {
	doc, err := r.Store.Get(ctx, InboxQuery(role, "").Collection, id)
	if err != nil {
		return nil, err
	}
	m := domain.DecodeMessage(doc.ID, doc.Data)
	return &m, nil
}

// MarkSeen flags a message in the reader's inbox as read by readerID.
func (r MessageRepository) MarkSeen(ctx context.Context, role domain.AdminRole, id, readerID string) error {
	return r.Store.Update(ctx, InboxQuery(role, "").Collection, id, map[string]any{
		"read":   true,
		"readBy": ArrayUnion(readerID),
		"status": string(domain.MessageSeen),
	})
}
