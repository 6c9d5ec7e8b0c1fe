package content

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
)

const settingsDocID = "general"

var (
	// errors
	ErrCourseNotFound = errors.New("course not found")
	ErrPostNotFound   = errors.New("blog post not found")
	ErrModuleNotFound = errors.New("learning module not found")
)

var byOrder = []core.Ordering{{Field: "order", Ascending: true}}

// Service reads the public site contents. Nothing is cached across calls.
type Service struct {
	store core.DocumentStore
}

func NewService(store core.DocumentStore) *Service {
	return &Service{store: store}
}

// ListCourses returns the active courses.
func (svc *Service) ListCourses(ctx context.Context) ([]Course, error) {
	docs, err := svc.store.Query(ctx, core.Query{
		Collection: core.CollCourses,
		Filters:    []core.Filter{{Field: "isActive", Value: true}},
		Orderings:  byOrder,
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return decode[Course](docs)
}

func (svc *Service) GetCourse(ctx context.Context, slug string) (Course, error) {
	doc, err := svc.bySlug(ctx, core.CollCourses, slug)
	if err != nil {
		if err == core.ErrDocNotFound {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, errors.Wrap(err, "getting course")
	}
	var c Course
	err = doc.DataTo(&c)
	return c, err
}

func (svc *Service) ListResources(ctx context.Context) ([]Resource, error) {
	docs, err := svc.store.Query(ctx, core.Query{Collection: core.CollResources, Orderings: byOrder})
	if err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}
	return decode[Resource](docs)
}

// ListPosts returns the blog posts, newest first, without their content.
func (svc *Service) ListPosts(ctx context.Context) ([]BlogPost, error) {
	docs, err := svc.store.Query(ctx, core.Query{
		Collection: core.CollBlogPosts,
		Orderings:  []core.Ordering{{Field: "publishedAt", Ascending: false}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying blog posts")
	}
	posts, err := decode[BlogPost](docs)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Content = ""
	}
	return posts, nil
}

func (svc *Service) GetPost(ctx context.Context, slug string) (BlogPost, error) {
	doc, err := svc.bySlug(ctx, core.CollBlogPosts, slug)
	if err != nil {
		if err == core.ErrDocNotFound {
			return BlogPost{}, ErrPostNotFound
		}
		return BlogPost{}, errors.Wrap(err, "getting blog post")
	}
	var p BlogPost
	err = doc.DataTo(&p)
	return p, err
}

// ListApprovedReviews returns moderated reviews, newest first.
func (svc *Service) ListApprovedReviews(ctx context.Context) ([]Review, error) {
	docs, err := svc.store.Query(ctx, core.Query{
		Collection: core.CollReviews,
		Filters:    []core.Filter{{Field: "isApproved", Value: true}},
		Orderings:  []core.Ordering{{Field: "createdAt", Ascending: false}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}
	return decode[Review](docs)
}

// ListModules returns the learning modules without their chapters.
func (svc *Service) ListModules(ctx context.Context) ([]LearningModule, error) {
	docs, err := svc.store.Query(ctx, core.Query{Collection: core.CollLearningModules, Orderings: byOrder})
	if err != nil {
		return nil, errors.Wrap(err, "querying learning modules")
	}
	return decode[LearningModule](docs)
}

// ModuleTree loads a module with its chapters and their lessons.
// Levels are fetched depth-first, one query per parent, one after the other.
func (svc *Service) ModuleTree(ctx context.Context, moduleID string) (LearningModule, error) {
	doc, err := svc.store.Get(ctx, core.CollLearningModules, moduleID)
	if err != nil {
		if err == core.ErrDocNotFound {
			return LearningModule{}, ErrModuleNotFound
		}
		return LearningModule{}, errors.Wrap(err, "getting learning module")
	}
	var module LearningModule
	if err = doc.DataTo(&module); err != nil {
		return LearningModule{}, err
	}

	chaptersColl := core.CollectionPath(core.CollLearningModules, moduleID, core.CollChapters)
	chDocs, err := svc.store.Query(ctx, core.Query{Collection: chaptersColl, Orderings: byOrder})
	if err != nil {
		return LearningModule{}, errors.Wrap(err, "querying chapters")
	}

	module.Chapters = make([]Chapter, 0, len(chDocs))
	for _, chDoc := range chDocs {
		var ch Chapter
		if err = chDoc.DataTo(&ch); err != nil {
			return LearningModule{}, err
		}

		lessonsColl := core.CollectionPath(chaptersColl, ch.ID, core.CollLessons)
		lDocs, err := svc.store.Query(ctx, core.Query{Collection: lessonsColl, Orderings: byOrder})
		if err != nil {
			return LearningModule{}, errors.Wrapf(err, "querying lessons of chapter %s", ch.ID)
		}
		ch.Lessons = make([]Lesson, 0, len(lDocs))
		for _, lDoc := range lDocs {
			var l Lesson
			if err = lDoc.DataTo(&l); err != nil {
				return LearningModule{}, err
			}
			ch.Lessons = append(ch.Lessons, l)
		}
		module.Chapters = append(module.Chapters, ch)
	}
	return module, nil
}

// Settings returns the site settings, zero-valued if they were never saved.
func (svc *Service) Settings(ctx context.Context) (SiteSettings, error) {
	var settings SiteSettings
	doc, err := svc.store.Get(ctx, core.CollSiteSettings, settingsDocID)
	if err != nil {
		if err == core.ErrDocNotFound {
			return settings, nil
		}
		return settings, errors.Wrap(err, "getting site settings")
	}
	err = doc.DataTo(&settings)
	return settings, err
}

func (svc *Service) bySlug(ctx context.Context, collection, slug string) (core.Document, error) {
	docs, err := svc.store.Query(ctx, core.Query{
		Collection: collection,
		Filters:    []core.Filter{{Field: "slug", Value: slug}},
		Limit:      1,
	})
	if err != nil {
		return core.Document{}, err
	}
	if len(docs) == 0 {
		return core.Document{}, core.ErrDocNotFound
	}
	return docs[0], nil
}

func decode[T any](docs []core.Document) ([]T, error) {
	out := make([]T, len(docs))
	for i, doc := range docs {
		if err := doc.DataTo(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
