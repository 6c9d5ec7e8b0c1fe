package progress

import "time"

type CourseProgress struct {
	CompletedLessons  []string `json:"completedLessons"`
	LastVisitedLesson string   `json:"lastVisitedLesson,omitempty"`
}

// IsCompleted reports whether lessonID is in the completed set.
func (cp CourseProgress) IsCompleted(lessonID string) bool {
	for _, id := range cp.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// toggled returns a copy with lessonID added if absent, removed otherwise.
func (cp CourseProgress) toggled(lessonID string) (CourseProgress, bool) {
	out := CourseProgress{
		CompletedLessons:  make([]string, 0, len(cp.CompletedLessons)+1),
		LastVisitedLesson: cp.LastVisitedLesson,
	}
	added := true
	for _, id := range cp.CompletedLessons {
		if id == lessonID {
			added = false
			continue
		}
		out.CompletedLessons = append(out.CompletedLessons, id)
	}
	if added {
		out.CompletedLessons = append(out.CompletedLessons, lessonID)
		out.LastVisitedLesson = lessonID
	}
	return out, added
}

// UserProgress is the per-user progress document. Its ID is the user's ID.
type UserProgress struct {
	UserID    string                    `json:"id"`
	Courses   map[string]CourseProgress `json:"courses"`
	UpdatedAt *time.Time                `json:"updatedAt,omitempty"`
}

func (up UserProgress) Course(courseID string) CourseProgress {
	cp := up.Courses[courseID]
	if cp.CompletedLessons == nil {
		cp.CompletedLessons = []string{}
	}
	return cp
}

func emptyProgress(userID string) UserProgress {
	return UserProgress{UserID: userID, Courses: make(map[string]CourseProgress)}
}
