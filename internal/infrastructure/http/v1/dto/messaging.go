package dto

import (
	"pharmaledger/internal/domain/messaging"
)

// MessageListQuery filters the owner's messages.
type MessageListQuery struct {
	ListQuery
	RecipientID string `form:"recipientId"`
	Status      string `form:"status"`
}

// ToFilter converts the query to a message filter.
func (q MessageListQuery) ToFilter() (messaging.Filter, error) {
	f := messaging.Filter{ListFilter: q.ListQuery.ToFilter(), RecipientID: q.RecipientID}
	if q.Status != "" {
		status, err := messaging.ParseStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = status
	}
	return f, nil
}

// MessageStatusRequest is sent by a gateway device after handling a message.
type MessageStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// NotificationListQuery filters the caller's notifications.
type NotificationListQuery struct {
	UnreadOnly bool `form:"unreadOnly"`
	Limit      int  `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset     int  `form:"offset" binding:"omitempty,min=0"`
}
