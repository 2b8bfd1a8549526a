package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"naebak-messaging/internal/domain/conversation"
	"naebak-messaging/internal/domain/message"
	"naebak-messaging/internal/domain/notification"
	"naebak-messaging/internal/domain/outbox"
	"naebak-messaging/internal/domain/profile"
	"naebak-messaging/internal/domain/report"
	"naebak-messaging/internal/domain/stats"
	naebak_errors "naebak-messaging/pkg/errors"

	"github.com/google/uuid"
)

// In-memory repositories back the unit tests; services run them without a
// *gorm.DB and skip the transactional wrapper. Rollup increments and bulk read
// flips are atomic under each store's mutex, mirroring the set-based SQL.

// --- Profiles ---

type MemoryProfileRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]profile.Profile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{items: make(map[uuid.UUID]profile.Profile)}
}

func (r *MemoryProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.UserID == p.UserID {
			return naebak_errors.ErrAlreadyExists
		}
	}
	if _, ok := r.items[p.ID]; ok {
		return naebak_errors.ErrAlreadyExists
	}
	r.items[p.ID] = *p
	return nil
}

func (r *MemoryProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return profile.Profile{}, naebak_errors.ErrNotFound
	}
	return p, nil
}

func (r *MemoryProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.items {
		if p.UserID == userID {
			return p, nil
		}
	}
	return profile.Profile{}, naebak_errors.ErrNotFound
}

func (r *MemoryProfileRepository) Update(ctx context.Context, p profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return naebak_errors.ErrNotFound
	}
	r.items[p.ID] = p
	return nil
}

func (r *MemoryProfileRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return naebak_errors.ErrNotFound
	}
	p.IsActive = false
	p.UpdatedAt = time.Now()
	r.items[id] = p
	return nil
}

// --- Conversations ---

type MemoryConversationRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]conversation.Conversation
}

func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{items: make(map[uuid.UUID]conversation.Conversation)}
}

func (r *MemoryConversationRepository) Create(ctx context.Context, c *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; ok {
		return naebak_errors.ErrAlreadyExists
	}
	r.items[c.ID] = *c
	return nil
}

func (r *MemoryConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return conversation.Conversation{}, naebak_errors.ErrNotFound
	}
	return c, nil
}

func (r *MemoryConversationRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	return r.GetByID(ctx, id)
}

func (r *MemoryConversationRepository) Update(ctx context.Context, c conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return naebak_errors.ErrNotFound
	}
	r.items[c.ID] = c
	return nil
}

func (r *MemoryConversationRepository) ApplyMessageRollup(ctx context.Context, conversationID uuid.UUID, at time.Time, senderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[conversationID]
	if !ok {
		return naebak_errors.ErrNotFound
	}
	c.TotalMessages++
	if !at.Before(c.LastMessageAt) {
		c.LastMessageAt = at
		c.LastMessageBy = uuid.NullUUID{UUID: senderID, Valid: true}
	}
	c.UpdatedAt = time.Now()
	r.items[conversationID] = c
	return nil
}

func (r *MemoryConversationRepository) SetRating(ctx context.Context, conversationID uuid.UUID, rating int16, feedback string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[conversationID]
	if !ok {
		return naebak_errors.ErrNotFound
	}
	c.CitizenRating.Int16 = rating
	c.CitizenRating.Valid = true
	c.CitizenFeedback.String = feedback
	c.CitizenFeedback.Valid = true
	c.UpdatedAt = time.Now()
	r.items[conversationID] = c
	return nil
}

func (r *MemoryConversationRepository) forUser(userID uuid.UUID) []conversation.Conversation {
	var out []conversation.Conversation
	for _, c := range r.items {
		if c.IsParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]conversation.Conversation, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.forUser(userID)
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *MemoryConversationRepository) ListForUserByState(ctx context.Context, userID uuid.UUID, closed bool, page, limit int) ([]conversation.Conversation, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var filtered []conversation.Conversation
	for _, c := range r.forUser(userID) {
		if c.IsClosed == closed {
			filtered = append(filtered, c)
		}
	}
	return paginate(filtered, page, limit), int64(len(filtered)), nil
}

func (r *MemoryConversationRepository) CountForUser(ctx context.Context, userID uuid.UUID, since *time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, c := range r.items {
		if !c.IsParticipant(userID) {
			continue
		}
		if since != nil && c.CreatedAt.Before(*since) {
			continue
		}
		count++
	}
	return count, nil
}

func (r *MemoryConversationRepository) CountForUserByState(ctx context.Context, userID uuid.UUID, closed bool) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, c := range r.items {
		if c.IsParticipant(userID) && c.IsClosed == closed {
			count++
		}
	}
	return count, nil
}

func (r *MemoryConversationRepository) AvgMessagesForUser(ctx context.Context, userID uuid.UUID) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum, n int64
	for _, c := range r.items {
		if c.IsParticipant(userID) {
			sum += c.TotalMessages
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (r *MemoryConversationRepository) AvgRatingForUser(ctx context.Context, userID uuid.UUID) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum, n int64
	for _, c := range r.items {
		if c.IsParticipant(userID) && c.CitizenRating.Valid {
			sum += int64(c.CitizenRating.Int16)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

// --- Messages ---

type MemoryMessageRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]message.Message
	order []uuid.UUID

	// conversations resolves participants for the cross-conversation counters,
	// standing in for the SQL subquery on the conversations table.
	conversations *MemoryConversationRepository
}

func NewMemoryMessageRepository(conversations *MemoryConversationRepository) *MemoryMessageRepository {
	return &MemoryMessageRepository{
		items:         make(map[uuid.UUID]message.Message),
		conversations: conversations,
	}
}

func (r *MemoryMessageRepository) Create(ctx context.Context, m *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[m.ID]; ok {
		return naebak_errors.ErrAlreadyExists
	}
	r.items[m.ID] = *m
	r.order = append(r.order, m.ID)
	return nil
}

func (r *MemoryMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.items[id]
	if !ok {
		return message.Message{}, naebak_errors.ErrNotFound
	}
	return m, nil
}

func (r *MemoryMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]message.Message, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []message.Message
	for _, id := range r.order {
		m := r.items[id]
		if m.ConversationID == conversationID {
			all = append(all, m)
		}
	}
	// Insertion order already matches (created_at, id) within one conversation.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *MemoryMessageRepository) MarkRead(ctx context.Context, messageID uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[messageID]
	if !ok {
		return false, naebak_errors.ErrNotFound
	}
	if m.IsRead {
		return false, nil
	}
	m.IsRead = true
	m.ReadAt.Time = at
	m.ReadAt.Valid = true
	r.items[messageID] = m
	return true, nil
}

func (r *MemoryMessageRepository) MarkConversationRead(ctx context.Context, conversationID, excludeSender uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, m := range r.items {
		if m.ConversationID != conversationID || m.SenderID == excludeSender || m.IsRead {
			continue
		}
		m.IsRead = true
		m.ReadAt.Time = at
		m.ReadAt.Valid = true
		r.items[id] = m
		count++
	}
	return count, nil
}

func (r *MemoryMessageRepository) CountUnreadFromSender(ctx context.Context, conversationID, senderID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, m := range r.items {
		if m.ConversationID == conversationID && m.SenderID == senderID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *MemoryMessageRepository) CountUnreadForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, m := range r.items {
		if m.SenderID == userID || m.IsRead {
			continue
		}
		if r.participates(userID, m.ConversationID) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryMessageRepository) CountSentBy(ctx context.Context, userID uuid.UUID, since *time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, m := range r.items {
		if m.SenderID != userID {
			continue
		}
		if since != nil && m.CreatedAt.Before(*since) {
			continue
		}
		count++
	}
	return count, nil
}

func (r *MemoryMessageRepository) CountReceivedBy(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, m := range r.items {
		if m.SenderID == userID {
			continue
		}
		if r.participates(userID, m.ConversationID) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryMessageRepository) participates(userID, conversationID uuid.UUID) bool {
	if r.conversations == nil {
		return false
	}
	c, err := r.conversations.GetByID(context.Background(), conversationID)
	if err != nil {
		return false
	}
	return c.IsParticipant(userID)
}

// --- Reports ---

type MemoryReportRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]report.Report
}

func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{items: make(map[uuid.UUID]report.Report)}
}

func (r *MemoryReportRepository) Create(ctx context.Context, rep *report.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.MessageID == rep.MessageID && existing.ReporterID == rep.ReporterID {
			return naebak_errors.ErrDuplicateReport
		}
	}
	r.items[rep.ID] = *rep
	return nil
}

func (r *MemoryReportRepository) GetByID(ctx context.Context, id uuid.UUID) (report.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.items[id]
	if !ok {
		return report.Report{}, naebak_errors.ErrNotFound
	}
	return rep, nil
}

func (r *MemoryReportRepository) MarkReviewed(ctx context.Context, id, reviewerID uuid.UUID, actionTaken string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.items[id]
	if !ok {
		return naebak_errors.ErrNotFound
	}
	if rep.IsReviewed {
		return naebak_errors.ErrAlreadyReviewed
	}
	rep.IsReviewed = true
	rep.ReviewedAt.Time = at
	rep.ReviewedAt.Valid = true
	rep.ReviewedBy = uuid.NullUUID{UUID: reviewerID, Valid: true}
	rep.ActionTaken.String = actionTaken
	rep.ActionTaken.Valid = true
	r.items[id] = rep
	return nil
}

func (r *MemoryReportRepository) ListPending(ctx context.Context, page, limit int) ([]report.Report, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var pending []report.Report
	for _, rep := range r.items {
		if !rep.IsReviewed {
			pending = append(pending, rep)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return paginate(pending, page, limit), int64(len(pending)), nil
}

// --- Notifications ---

type MemoryNotificationRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]notification.Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{items: make(map[uuid.UUID]notification.Notification)}
}

func (r *MemoryNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[n.ID]; ok {
		return naebak_errors.ErrAlreadyExists
	}
	r.items[n.ID] = *n
	return nil
}

func (r *MemoryNotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]notification.Notification, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []notification.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			all = append(all, n)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *MemoryNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return false, naebak_errors.ErrNotFound
	}
	if n.IsRead {
		return false, nil
	}
	n.IsRead = true
	n.ReadAt.Time = at
	n.ReadAt.Valid = true
	r.items[id] = n
	return true, nil
}

func (r *MemoryNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, n := range r.items {
		if n.UserID != userID || n.IsRead {
			continue
		}
		n.IsRead = true
		n.ReadAt.Time = at
		n.ReadAt.Valid = true
		r.items[id] = n
		count++
	}
	return count, nil
}

func (r *MemoryNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// --- Daily statistics ---

type MemoryStatsRepository struct {
	mu    sync.Mutex
	items map[string]stats.DailyStatistics
}

func NewMemoryStatsRepository() *MemoryStatsRepository {
	return &MemoryStatsRepository{items: make(map[string]stats.DailyStatistics)}
}

func dailyKey(userID uuid.UUID, date time.Time) string {
	return userID.String() + "|" + date.UTC().Format("2006-01-02")
}

func (r *MemoryStatsRepository) IncrementDaily(ctx context.Context, userID uuid.UUID, date time.Time, field DailyField) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dailyKey(userID, date)
	row, ok := r.items[key]
	if !ok {
		row = stats.DailyStatistics{
			ID:        uuid.New(),
			UserID:    userID,
			Date:      date.UTC().Truncate(24 * time.Hour),
			CreatedAt: time.Now(),
		}
	}
	switch field {
	case FieldMessagesSent:
		row.MessagesSent++
	case FieldMessagesReceived:
		row.MessagesReceived++
	case FieldConversationsStarted:
		row.ConversationsStarted++
	case FieldConversationsClosed:
		row.ConversationsClosed++
	default:
		return naebak_errors.ErrInvalidInput
	}
	row.UpdatedAt = time.Now()
	r.items[key] = row
	return nil
}

func (r *MemoryStatsRepository) GetDaily(ctx context.Context, userID uuid.UUID, date time.Time) (stats.DailyStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.items[dailyKey(userID, date)]
	if !ok {
		return stats.DailyStatistics{}, naebak_errors.ErrNotFound
	}
	return row, nil
}

// --- Outbox ---

type MemoryOutboxRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]outbox.OutboxEvent
	order []uuid.UUID
}

func NewMemoryOutboxRepository() *MemoryOutboxRepository {
	return &MemoryOutboxRepository{items: make(map[uuid.UUID]outbox.OutboxEvent)}
}

func (r *MemoryOutboxRepository) CreateEvent(ctx context.Context, e *outbox.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[e.ID]; ok {
		return naebak_errors.ErrAlreadyExists
	}
	r.items[e.ID] = *e
	r.order = append(r.order, e.ID)
	return nil
}

func (r *MemoryOutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]outbox.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []outbox.OutboxEvent
	for _, id := range r.order {
		e := r.items[id]
		if e.ProcessedAt != nil {
			continue
		}
		if e.NextRetryAt != nil && e.NextRetryAt.After(now) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryOutboxRepository) MarkEventProcessed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return naebak_errors.ErrNotFound
	}
	now := time.Now()
	e.ProcessedAt = &now
	e.ErrorMessage = ""
	r.items[id] = e
	return nil
}

func (r *MemoryOutboxRepository) MarkEventFailed(ctx context.Context, id uuid.UUID, nextRetryAt time.Time, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.items[id]
	if !ok {
		return naebak_errors.ErrNotFound
	}
	e.RetryCount++
	e.NextRetryAt = &nextRetryAt
	e.ErrorMessage = errorMessage
	r.items[id] = e
	return nil
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
