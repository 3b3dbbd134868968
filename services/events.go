package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"course-folder-api/config"
	"course-folder-api/models"

	"gorm.io/gorm"
)

// Event is an outbound workflow notification. The engine only publishes
// events; delivery (inbox rows, mail, anything else) is up to subscribers.
type Event struct {
	Type       string
	Title      string
	Message    string
	FolderID   *int
	Recipients []int
	// Broadcast mirrors the event to every active administrator as the
	// oversight channel, in addition to Recipients.
	Broadcast bool
}

// Subscriber consumes published events. Errors are logged, never propagated:
// a transition's success must not depend on delivery.
type Subscriber interface {
	Notify(event Event) error
}

// EventPublisher fans events out to registered subscribers.
type EventPublisher struct {
	subscribers []Subscriber
}

// NewEventPublisher returns a publisher with the default inbox subscriber
// registered, plus mail delivery when SMTP is configured.
func NewEventPublisher(db *gorm.DB) *EventPublisher {
	p := &EventPublisher{}
	p.Subscribe(&InboxSubscriber{db: db})
	if os.Getenv("SMTP_HOST") != "" {
		p.Subscribe(NewMailSubscriber(db))
	}
	return p
}

// Subscribe registers an additional subscriber.
func (p *EventPublisher) Subscribe(s Subscriber) {
	p.subscribers = append(p.subscribers, s)
}

// Publish delivers the event to every subscriber, best-effort.
func (p *EventPublisher) Publish(event Event) {
	for _, s := range p.subscribers {
		if err := s.Notify(event); err != nil {
			log.Printf("event delivery failed (%s): %v", event.Type, err)
		}
	}
}

// InboxSubscriber persists events as notification rows, expanding broadcasts
// to all active administrators.
type InboxSubscriber struct {
	db *gorm.DB
}

func (s *InboxSubscriber) Notify(event Event) error {
	userIDs := append([]int{}, event.Recipients...)

	if event.Broadcast {
		var admins []models.User
		if err := s.db.Where("role = ? AND is_active = ? AND deleted_at IS NULL", models.RoleAdmin, true).
			Find(&admins).Error; err != nil {
			return fmt.Errorf("failed to resolve admin recipients: %w", err)
		}
		for _, admin := range admins {
			userIDs = append(userIDs, admin.UserID)
		}
	}

	seen := make(map[int]struct{}, len(userIDs))
	now := time.Now()
	for _, userID := range userIDs {
		if userID == 0 {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		notification := models.Notification{
			UserID:    userID,
			EventType: event.Type,
			Title:     event.Title,
			Message:   event.Message,
			FolderID:  event.FolderID,
			CreatedAt: now,
		}
		if err := s.db.Create(&notification).Error; err != nil {
			return fmt.Errorf("failed to store notification for user %d: %w", userID, err)
		}
	}
	return nil
}

// MailSubscriber forwards events to recipients' mailboxes via the configured
// SMTP relay.
type MailSubscriber struct {
	db *gorm.DB
}

func NewMailSubscriber(db *gorm.DB) *MailSubscriber {
	return &MailSubscriber{db: db}
}

func (s *MailSubscriber) Notify(event Event) error {
	if len(event.Recipients) == 0 {
		return nil
	}

	var users []models.User
	if err := s.db.Where("user_id IN ? AND deleted_at IS NULL", event.Recipients).Find(&users).Error; err != nil {
		return fmt.Errorf("failed to resolve mail recipients: %w", err)
	}

	to := make([]string, 0, len(users))
	for _, u := range users {
		if u.Email != "" {
			to = append(to, u.Email)
		}
	}
	if len(to) == 0 {
		return nil
	}

	body := fmt.Sprintf("<p>%s</p>", event.Message)
	return config.SendMail(to, event.Title, body)
}
