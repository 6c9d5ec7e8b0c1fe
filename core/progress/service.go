package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
)

type Service struct {
	store  core.DocumentStore
	logger core.Logger
}

func NewService(store core.DocumentStore, logger core.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Get returns the user's progress, empty if nothing was saved yet.
func (svc *Service) Get(ctx context.Context, userID string) (UserProgress, error) {
	if err := checkIDs(userID); err != nil {
		return UserProgress{}, err
	}
	doc, err := svc.store.Get(ctx, core.CollUserProgress, userID)
	if err != nil {
		if err == core.ErrDocNotFound {
			return emptyProgress(userID), nil
		}
		return UserProgress{}, errors.Wrap(err, "getting user progress")
	}
	return decode(doc)
}

// ToggleLesson marks the lesson completed, or not completed if it already was.
// Only the course's entry and updatedAt are written; concurrent writers are last-write-wins.
func (svc *Service) ToggleLesson(ctx context.Context, userID, courseID, lessonID string) (CourseProgress, error) {
	if err := checkIDs(userID, courseID, lessonID); err != nil {
		return CourseProgress{}, err
	}
	current, err := svc.Get(ctx, userID)
	if err != nil {
		return CourseProgress{}, err
	}

	cp, added := current.Course(courseID).toggled(lessonID)
	entry := map[string]interface{}{"completedLessons": toInterfaces(cp.CompletedLessons)}
	if added {
		entry["lastVisitedLesson"] = lessonID
	}
	data := map[string]interface{}{
		"courses":   map[string]interface{}{courseID: entry},
		"updatedAt": core.ServerTimestamp,
	}
	if err = svc.store.Set(ctx, core.CollUserProgress, userID, data, true); err != nil {
		return CourseProgress{}, errors.Wrap(err, "saving user progress")
	}
	return cp, nil
}

// Watch calls fn with the user's progress now and after every change.
func (svc *Service) Watch(ctx context.Context, userID string, fn func(UserProgress)) (core.Subscription, error) {
	if err := checkIDs(userID); err != nil {
		return nil, err
	}
	return svc.store.Watch(ctx, core.CollUserProgress, userID, func(doc core.Document, exists bool) {
		if !exists {
			fn(emptyProgress(userID))
			return
		}
		up, err := decode(doc)
		if err != nil {
			// watchers keep the last good state
			svc.logger.Error(fmt.Sprintf("decoding progress of %s: %v", userID, err), err)
			return
		}
		fn(up)
	})
}

// Percentage returns completed/total*100 rounded to 2 decimals, 0 when total is 0.
func Percentage(completed, total int) float64 {
	return core.Percentage(float64(completed), float64(total))
}

func decode(doc core.Document) (UserProgress, error) {
	var up UserProgress
	if err := doc.DataTo(&up); err != nil {
		return UserProgress{}, err
	}
	if up.Courses == nil {
		up.Courses = make(map[string]CourseProgress)
	}
	return up, nil
}

// ids end up as document ids and field names: no empty ones, no path separators.
func checkIDs(ids ...string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" || strings.ContainsAny(id, "./") {
			return core.NewInvalidInputError("invalid id: " + id)
		}
	}
	return nil
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
