package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"famlink/internal/models"
	"famlink/internal/repository"
)

const maxActivityDetail = 128

// ActivityInput is one entry in a child's practice log
type ActivityInput struct {
	Kind      models.ActivityKind
	Day       models.Date
	Detail    string
	Completed *bool
}

// ActivityService records daily practice for children, visible to the
// child's members only.
type ActivityService struct {
	children   *repository.ChildRepository
	activities *repository.ActivityRepository
}

// NewActivityService creates a new activity service
func NewActivityService(children *repository.ChildRepository, activities *repository.ActivityRepository) *ActivityService {
	return &ActivityService{children: children, activities: activities}
}

func (s *ActivityService) memberChild(ctx context.Context, accountID, childID int64) (*models.Child, error) {
	child, err := s.children.GetByID(ctx, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil || !child.HasMember(accountID) {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// Record stores an entry, replacing an earlier one for the same day and detail
func (s *ActivityService) Record(ctx context.Context, accountID, childID int64, in ActivityInput) (*models.Activity, error) {
	detail, err := normalizeActivity(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.memberChild(ctx, accountID, childID); err != nil {
		return nil, err
	}

	completed := true
	if in.Completed != nil {
		completed = *in.Completed
	}

	activity := &models.Activity{
		ChildID:    childID,
		RecordedBy: accountID,
		Kind:       in.Kind,
		Day:        models.NewDate(in.Day.Time),
		Detail:     detail,
		Completed:  completed,
	}
	if err := s.activities.Record(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

func normalizeActivity(in ActivityInput) (string, error) {
	if !in.Kind.Valid() {
		return "", fmt.Errorf("%w: unknown activity kind %q", ErrInvalidInput, in.Kind)
	}
	if in.Day.IsZero() {
		return "", fmt.Errorf("%w: day is required", ErrInvalidInput)
	}

	detail := strings.TrimSpace(in.Detail)
	switch in.Kind {
	case models.ActivityPrayer:
		detail = strings.ToLower(detail)
		if !slices.Contains(models.Prayers, detail) {
			return "", fmt.Errorf("%w: prayer must be one of %s", ErrInvalidInput, strings.Join(models.Prayers, ", "))
		}
	case models.ActivityFasting:
		detail = ""
	case models.ActivityQuran:
		if utf8.RuneCountInString(detail) > maxActivityDetail {
			return "", fmt.Errorf("%w: detail must be at most %d characters", ErrInvalidInput, maxActivityDetail)
		}
	}
	return detail, nil
}

// List returns a child's log, optionally bounded by day
func (s *ActivityService) List(ctx context.Context, accountID, childID int64, from, to *models.Date) ([]models.Activity, error) {
	if from != nil && to != nil && to.Before(from.Time) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrInvalidInput)
	}
	if _, err := s.memberChild(ctx, accountID, childID); err != nil {
		return nil, err
	}
	activities, err := s.activities.ListForChild(ctx, childID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// Delete removes an entry from a child's log
func (s *ActivityService) Delete(ctx context.Context, accountID, childID, activityID int64) error {
	if _, err := s.memberChild(ctx, accountID, childID); err != nil {
		return err
	}
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return fmt.Errorf("failed to get activity: %w", err)
	}
	if activity == nil || activity.ChildID != childID {
		return ErrActivityNotFound
	}
	return s.activities.Delete(ctx, activityID)
}
