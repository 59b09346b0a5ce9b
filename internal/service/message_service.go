package service

import (
	"context"
	"strings"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/repository"
)

// Sender identifies the admin writing or reading messages.
type Sender struct {
	ID       string
	Name     string
	Role     domain.AdminRole
	BranchID string
}

type SendMessageRequest struct {
	Content           string `json:"content" validate:"required,max=2000"`
	RecipientBranchID string `json:"recipientBranchId"`
}

type MessageService struct {
	Repo repository.MessageRepository
}

// Send delivers a message. The super admin writes to one branch; a branch
// admin always writes to the super admin.
func (s MessageService) Send(ctx context.Context, from Sender, req SendMessageRequest) (*domain.Message, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := check(req); err != nil {
		return nil, err
	}
	in := repository.SendMessageInput{
		Content:    req.Content,
		SenderID:   from.ID,
		SenderName: from.Name,
		SenderRole: from.Role,
	}
	if from.Role == domain.RoleSuperAdmin {
		if req.RecipientBranchID == "" {
			return nil, invalid("recipientBranchId", "is required")
		}
		in.RecipientBranchID = req.RecipientBranchID
	} else {
		if from.BranchID == "" {
			return nil, invalid("branch", "sender has no branch")
		}
		in.SenderBranchID = from.BranchID
	}
	return s.Repo.Send(ctx, in)
}

func (s MessageService) Inbox(ctx context.Context, reader Sender) ([]domain.Message, error) {
	return s.Repo.Inbox(ctx, reader.Role, reader.BranchID)
}

// MarkSeen flags a message in the reader's inbox. A branch admin may only
// mark messages addressed to its own branch.
func (s MessageService) MarkSeen(ctx context.Context, reader Sender, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("id", "is required")
	}
	msg, err := s.Repo.Get(ctx, reader.Role, id)
	if err != nil {
		return err
	}
	if reader.Role != domain.RoleSuperAdmin {
		if reader.BranchID == "" {
			return ErrForbidden
		}
		if err := owns(reader.BranchID, msg.RecipientBranchID); err != nil {
			return err
		}
	}
	return s.Repo.MarkSeen(ctx, reader.Role, id, reader.ID)
}
