// internal/planning/service.go

package planning

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notifier delivers lifecycle notifications to group members. Implemented by
// the notifications module; a no-op implementation is fine in tests.
type Notifier interface {
	NotifyEventConfirmed(ctx context.Context, event *Event, memberIDs []int64) error
	NotifyEventCancelled(ctx context.Context, event *Event, memberIDs []int64) error
	NotifyEventReminder(ctx context.Context, event *Event, memberIDs []int64) error
}

type Service interface {
	// Planning
	PlanEvent(ctx context.Context, userID int64, dto *PlanEventDTO) (*EventPlan, error)
	ResolveConflicts(ctx context.Context, userID int64, dto *ResolveConflictDTO) (*ConflictResolution, error)

	// Event lifecycle
	CreateEvent(ctx context.Context, userID int64, dto *CreateEventDTO) (*Event, error)
	FinalizeEvent(ctx context.Context, userID int64, eventID uuid.UUID) (*Event, error)
	CancelEvent(ctx context.Context, userID int64, eventID uuid.UUID) (*Event, error)
	GetEvent(ctx context.Context, userID int64, eventID uuid.UUID) (*Event, error)
	ListGroupEvents(ctx context.Context, userID int64, groupID int64, status string) ([]*Event, error)

	// Feedback
	SubmitFeedback(ctx context.Context, userID int64, eventID uuid.UUID, dto *SubmitFeedbackDTO) (*Feedback, error)

	// Scheduled jobs
	SendEventReminders(ctx context.Context) error
	ExpirePendingEvents(ctx context.Context) error
}

// Options carries the tunables the service needs from configuration.
type Options struct {
	DefaultDuration  time.Duration
	ReminderLeadTime time.Duration
}

type service struct {
	repo      Repository
	optimizer *Optimizer
	engine    *RecommendationEngine
	processor *FeedbackProcessor
	resolver  *ConflictResolver
	notifier  Notifier
	hub       *Hub
	opts      Options

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

func NewService(repo Repository, optimizer *Optimizer, engine *RecommendationEngine, processor *FeedbackProcessor, resolver *ConflictResolver, notifier Notifier, hub *Hub, opts Options) Service {
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = time.Hour
	}
	if opts.ReminderLeadTime <= 0 {
		opts.ReminderLeadTime = 2 * time.Hour
	}
	return &service{
		repo:      repo,
		optimizer: optimizer,
		engine:    engine,
		processor: processor,
		resolver:  resolver,
		notifier:  notifier,
		hub:       hub,
		opts:      opts,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// Planning

func (s *service) PlanEvent(ctx context.Context, userID int64, dto *PlanEventDTO) (*EventPlan, error) {
	started := time.Now()

	group, err := s.memberGroup(ctx, dto.GroupID, userID)
	if err != nil {
		return nil, err
	}

	duration := s.opts.DefaultDuration
	if dto.DurationMinutes > 0 {
		duration = time.Duration(dto.DurationMinutes) * time.Minute
	}

	windowsByUser, err := s.repo.GetGroupWindows(ctx, group.ID, dto.From, dto.To)
	if err != nil {
		return nil, err
	}
	windowsByUser = clampWindows(windowsByUser, dto.From, dto.To)

	slots, err := s.optimizer.FindCommonAvailability(group, windowsByUser, duration)
	if err != nil {
		return nil, err
	}

	suggestions, err := s.loadSuggestions(ctx, dto)
	if err != nil {
		return nil, err
	}

	ranked := []RankedSuggestion{}
	var slotRankings []SlotRanking
	if len(suggestions) > 0 {
		profiles, err := s.repo.GetProfiles(ctx, group.MemberIDs)
		if err != nil {
			return nil, err
		}
		ranked, err = s.engine.RankSuggestions(suggestions, group.MemberIDs, profiles)
		if err != nil {
			return nil, err
		}

		// Partial-overlap slots get re-ranked over their actual attendees:
		// the absentees' preferences should not steer a slot they miss.
		for _, slot := range slots {
			if slot.AttendanceFraction >= 1-weightEpsilon || len(slot.AttendeeIDs) == 0 {
				continue
			}
			slotRanked, err := s.engine.RankForSlot(slot, suggestions, profiles)
			if err != nil {
				return nil, err
			}
			slotRankings = append(slotRankings, SlotRanking{Slot: slot, Suggestions: slotRanked})
		}
	}

	plan := &EventPlan{
		GroupID:      group.ID,
		Slots:        slots,
		Suggestions:  ranked,
		SlotRankings: slotRankings,
		GeneratedAt:  time.Now().UTC(),
	}

	plansGenerated.Inc()
	planDuration.Observe(time.Since(started).Seconds())
	s.broadcast(group.ID, "plan_generated", plan)

	return plan, nil
}

func (s *service) loadSuggestions(ctx context.Context, dto *PlanEventDTO) ([]Suggestion, error) {
	if len(dto.SuggestionIDs) > 0 {
		suggestions, err := s.repo.GetSuggestionsByIDs(ctx, dto.SuggestionIDs)
		if err != nil {
			return nil, err
		}
		if len(suggestions) == 0 {
			return nil, ErrNoSuggestions
		}
		return suggestions, nil
	}
	return s.repo.GetSuggestions(ctx, dto.Category)
}

func (s *service) ResolveConflicts(ctx context.Context, userID int64, dto *ResolveConflictDTO) (*ConflictResolution, error) {
	group, err := s.memberGroup(ctx, dto.GroupID, userID)
	if err != nil {
		return nil, err
	}

	duration := s.opts.DefaultDuration
	if dto.DurationMinutes > 0 {
		duration = time.Duration(dto.DurationMinutes) * time.Minute
	}

	windowsByUser, err := s.repo.GetGroupWindows(ctx, group.ID, dto.From, dto.To)
	if err != nil {
		return nil, err
	}
	windowsByUser = clampWindows(windowsByUser, dto.From, dto.To)

	var rejected *Slot
	if dto.Rejected != nil {
		rejected = &Slot{Start: dto.Rejected.Start, End: dto.Rejected.End}
	}

	resolution, err := s.resolver.Resolve(group, windowsByUser, duration, rejected)
	if err != nil {
		return nil, err
	}

	conflictResolutions.WithLabelValues(resolutionOutcome(resolution)).Inc()
	return resolution, nil
}

func resolutionOutcome(r *ConflictResolution) string {
	switch {
	case len(r.Alternatives) > 0:
		return "resolved"
	case r.BestPartial != nil:
		return "partial"
	default:
		return "no_data"
	}
}

// Event lifecycle

func (s *service) CreateEvent(ctx context.Context, userID int64, dto *CreateEventDTO) (*Event, error) {
	group, err := s.memberGroup(ctx, dto.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !dto.Start.Before(dto.End) {
		return nil, ErrInvalidWindow
	}

	event := &Event{
		ID:           uuid.New(),
		GroupID:      group.ID,
		SuggestionID: dto.SuggestionID,
		Title:        dto.Title,
		Start:        dto.Start.UTC(),
		End:          dto.End.UTC(),
		Status:       StatusPending,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	eventTransitions.WithLabelValues(string(StatusPending)).Inc()
	s.broadcast(group.ID, "event_created", event)

	return event, nil
}

// FinalizeEvent confirms a pending event. Attendance is re-validated against
// current availability because windows may have changed since planning; a
// confirmation below the group threshold fails with ErrAttendanceDropped and
// leaves the event pending.
func (s *service) FinalizeEvent(ctx context.Context, userID int64, eventID uuid.UUID) (*Event, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.Status.CanTransitionTo(StatusConfirmed) {
		return nil, ErrInvalidTransition
	}

	group, err := s.memberGroup(ctx, event.GroupID, userID)
	if err != nil {
		return nil, err
	}

	windowsByUser, err := s.repo.GetGroupWindows(ctx, group.ID, event.Start, event.End)
	if err != nil {
		return nil, err
	}

	fraction, _ := s.resolver.AttendanceAt(group, windowsByUser, event.Start, event.End)
	if fraction < s.resolver.Threshold(group) {
		return nil, ErrAttendanceDropped
	}

	now := time.Now().UTC()
	event.Status = StatusConfirmed
	event.FinalizedAt = &now

	if err := s.repo.UpdateEventStatus(ctx, event); err != nil {
		return nil, err
	}

	eventTransitions.WithLabelValues(string(StatusConfirmed)).Inc()
	s.broadcast(group.ID, "event_confirmed", event)
	s.notify(ctx, func(ctx context.Context) error {
		return s.notifier.NotifyEventConfirmed(ctx, event, group.MemberIDs)
	})

	return event, nil
}

// CancelEvent is a soft cancellation: the record and any feedback already
// submitted are kept.
func (s *service) CancelEvent(ctx context.Context, userID int64, eventID uuid.UUID) (*Event, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.Status.CanTransitionTo(StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	group, err := s.memberGroup(ctx, event.GroupID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event.Status = StatusCancelled
	event.CancelledAt = &now

	if err := s.repo.UpdateEventStatus(ctx, event); err != nil {
		return nil, err
	}

	eventTransitions.WithLabelValues(string(StatusCancelled)).Inc()
	s.broadcast(group.ID, "event_cancelled", event)
	s.notify(ctx, func(ctx context.Context) error {
		return s.notifier.NotifyEventCancelled(ctx, event, group.MemberIDs)
	})

	return event, nil
}

func (s *service) GetEvent(ctx context.Context, userID int64, eventID uuid.UUID) (*Event, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberGroup(ctx, event.GroupID, userID); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) ListGroupEvents(ctx context.Context, userID int64, groupID int64, status string) ([]*Event, error) {
	if _, err := s.memberGroup(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListGroupEvents(ctx, groupID, status)
}

// Feedback

// SubmitFeedback records a member's rating for a confirmed event and folds
// it into their preference profile. Updates to a single user's profile are
// serialized so concurrent submissions cannot lose writes.
func (s *service) SubmitFeedback(ctx context.Context, userID int64, eventID uuid.UUID, dto *SubmitFeedbackDTO) (*Feedback, error) {
	if dto.Rating < 1 || dto.Rating > maxRating {
		return nil, ErrInvalidRating
	}

	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	if _, err := s.memberGroup(ctx, event.GroupID, userID); err != nil {
		return nil, err
	}

	// Feedback is append-only: one rating per member per event, never
	// overwritten, so the EMA sees each event exactly once.
	exists, err := s.repo.HasFeedback(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrFeedbackExists
	}

	fb := &Feedback{
		EventID: eventID,
		UserID:  userID,
		Rating:  dto.Rating,
		Comment: dto.Comment,
	}
	if err := s.repo.CreateFeedback(ctx, fb); err != nil {
		return nil, err
	}

	if err := s.learnFromFeedback(ctx, userID, event, dto.Rating); err != nil {
		// The feedback record is the source of truth; a failed profile
		// update can be re-derived from it later.
		log.Printf("planning: profile update failed for user %d: %v", userID, err)
	}

	feedbackProcessed.Inc()
	return fb, nil
}

func (s *service) learnFromFeedback(ctx context.Context, userID int64, event *Event, rating int) error {
	if event.SuggestionID == nil {
		return nil
	}

	suggestions, err := s.repo.GetSuggestionsByIDs(ctx, []int64{*event.SuggestionID})
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		return nil
	}
	suggestion := suggestions[0]

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	profiles, err := s.repo.GetProfiles(ctx, []int64{userID})
	if err != nil {
		return err
	}
	profile, ok := profiles[userID]
	if !ok {
		profile = NewPreferenceProfile(userID)
	}

	updated, err := s.processor.ApplyFeedback(profile, suggestion.Category, suggestion.Attributes, rating)
	if err != nil {
		return err
	}

	return s.repo.SaveProfile(ctx, updated)
}

func (s *service) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// Scheduled Jobs

// SendEventReminders dispatches reminders for confirmed events starting
// within the configured lead time. Runs hourly; the window below matches
// that cadence so each event is reminded once.
func (s *service) SendEventReminders(ctx context.Context) error {
	now := time.Now().UTC()
	from := now.Add(s.opts.ReminderLeadTime)
	to := from.Add(time.Hour)

	events, err := s.repo.ListEventsStartingBetween(ctx, from, to)
	if err != nil {
		return err
	}

	for _, event := range events {
		group, err := s.repo.GetGroup(ctx, event.GroupID)
		if err != nil {
			log.Printf("planning: reminder skipped for event %s: %v", event.ID, err)
			continue
		}
		s.notify(ctx, func(ctx context.Context) error {
			return s.notifier.NotifyEventReminder(ctx, event, group.MemberIDs)
		})
		remindersSent.Inc()
	}

	return nil
}

// ExpirePendingEvents cancels pending events whose window has already
// passed. They were never confirmed, so no cancellation notices go out.
func (s *service) ExpirePendingEvents(ctx context.Context) error {
	count, err := s.repo.ExpirePendingEvents(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("planning: expired %d stale pending events", count)
		eventTransitions.WithLabelValues(string(StatusCancelled)).Add(float64(count))
	}
	return nil
}

// helpers

func (s *service) memberGroup(ctx context.Context, groupID, userID int64) (*FriendGroup, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, ErrNotGroupMember
	}
	return group, nil
}

func (s *service) broadcast(groupID int64, kind string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToGroup(groupID, kind, payload)
}

func (s *service) notify(ctx context.Context, fn func(context.Context) error) {
	if s.notifier == nil {
		return
	}
	if err := fn(ctx); err != nil {
		log.Printf("planning: notification failed: %v", err)
	}
}

// clampWindows intersects every window with [from, to) and drops the ones
// that end up empty.
func clampWindows(windowsByUser map[int64][]AvailabilityWindow, from, to time.Time) map[int64][]AvailabilityWindow {
	out := make(map[int64][]AvailabilityWindow, len(windowsByUser))
	for id, ws := range windowsByUser {
		for _, w := range ws {
			if w.Start.Before(from) {
				w.Start = from
			}
			if w.End.After(to) {
				w.End = to
			}
			if w.Start.Before(w.End) {
				out[id] = append(out[id], w)
			}
		}
	}
	return out
}
