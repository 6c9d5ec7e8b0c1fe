package content

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edusite/core"
	inmemdb "github.com/trezcool/edusite/storage/database/inmem"
)

func seed(t *testing.T, db core.DocumentStore, collection, id string, data map[string]interface{}) {
	t.Helper()
	require.NoError(t, db.Set(context.Background(), collection, id, data, false))
}

func TestService_Courses(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := NewService(db)

	seed(t, db, core.CollCourses, "c2", map[string]interface{}{"slug": "tally", "title": "Tally", "order": 2, "isActive": true, "fee": 4500})
	seed(t, db, core.CollCourses, "c1", map[string]interface{}{"slug": "dca", "title": "DCA", "order": 1, "isActive": true})
	seed(t, db, core.CollCourses, "c3", map[string]interface{}{"slug": "old", "title": "Old", "order": 0, "isActive": false})

	courses, err := svc.ListCourses(ctx)
	require.NoError(t, err)
	if assert.Len(t, courses, 2) {
		assert.Equal(t, "c1", courses[0].ID)
		assert.Equal(t, "tally", courses[1].Slug)
		assert.Equal(t, 4500.0, courses[1].Fee)
	}

	c, err := svc.GetCourse(ctx, "tally")
	require.NoError(t, err)
	assert.Equal(t, "c2", c.ID)

	_, err = svc.GetCourse(ctx, "nope")
	assert.Equal(t, ErrCourseNotFound, err)
}

func TestService_Posts(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := NewService(db)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	seed(t, db, core.CollBlogPosts, "p1", map[string]interface{}{"slug": "first", "title": "First", "content": "long", "publishedAt": day})
	seed(t, db, core.CollBlogPosts, "p2", map[string]interface{}{"slug": "second", "title": "Second", "content": "longer", "publishedAt": day.AddDate(0, 0, 3), "tags": []string{"go"}})
	seed(t, db, core.CollBlogPosts, "draft", map[string]interface{}{"slug": "draft", "title": "Draft"})

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	if assert.Len(t, posts, 2) {
		assert.Equal(t, "second", posts[0].Slug)
		assert.Equal(t, []string{"go"}, posts[0].Tags)
		assert.Empty(t, posts[0].Content)
		assert.Equal(t, "first", posts[1].Slug)
	}

	post, err := svc.GetPost(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "long", post.Content)
	assert.True(t, day.Equal(post.PublishedAt))

	_, err = svc.GetPost(ctx, "missing")
	assert.Equal(t, ErrPostNotFound, err)
}

func TestService_ListApprovedReviews(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := NewService(db)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	seed(t, db, core.CollReviews, "r1", map[string]interface{}{"name": "Asha", "rating": 5, "isApproved": true, "createdAt": day})
	seed(t, db, core.CollReviews, "r2", map[string]interface{}{"name": "Ravi", "rating": 4, "isApproved": true, "createdAt": day.Add(time.Hour)})
	seed(t, db, core.CollReviews, "r3", map[string]interface{}{"name": "Spam", "rating": 1, "isApproved": false, "createdAt": day})

	reviews, err := svc.ListApprovedReviews(ctx)
	require.NoError(t, err)
	if assert.Len(t, reviews, 2) {
		assert.Equal(t, "Ravi", reviews[0].Name)
		assert.Equal(t, "Asha", reviews[1].Name)
	}
}

func TestService_ModuleTree(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := NewService(db)

	seed(t, db, core.CollLearningModules, "m1", map[string]interface{}{"title": "Office Basics", "order": 1})
	seed(t, db, core.CollLearningModules, "m2", map[string]interface{}{"title": "Internet", "order": 2})
	chapters := core.CollectionPath(core.CollLearningModules, "m1", core.CollChapters)
	seed(t, db, chapters, "ch2", map[string]interface{}{"title": "Excel", "order": 2})
	seed(t, db, chapters, "ch1", map[string]interface{}{"title": "Word", "order": 1})
	seed(t, db, core.CollectionPath(chapters, "ch1", core.CollLessons), "l2", map[string]interface{}{"title": "Tables", "order": 2})
	seed(t, db, core.CollectionPath(chapters, "ch1", core.CollLessons), "l1", map[string]interface{}{"title": "Typing", "order": 1})
	seed(t, db, core.CollectionPath(chapters, "ch2", core.CollLessons), "l3", map[string]interface{}{"title": "Formulas", "order": 1})

	modules, err := svc.ListModules(ctx)
	require.NoError(t, err)
	if assert.Len(t, modules, 2) {
		assert.Equal(t, "m1", modules[0].ID)
		assert.Empty(t, modules[0].Chapters)
	}

	tree, err := svc.ModuleTree(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Office Basics", tree.Title)
	require.Len(t, tree.Chapters, 2)
	assert.Equal(t, "Word", tree.Chapters[0].Title)
	require.Len(t, tree.Chapters[0].Lessons, 2)
	assert.Equal(t, "l1", tree.Chapters[0].Lessons[0].ID)
	assert.Equal(t, "l2", tree.Chapters[0].Lessons[1].ID)
	assert.Equal(t, "Formulas", tree.Chapters[1].Lessons[0].Title)
	assert.Equal(t, 3, tree.LessonCount())

	empty, err := svc.ModuleTree(ctx, "m2")
	require.NoError(t, err)
	assert.Empty(t, empty.Chapters)

	_, err = svc.ModuleTree(ctx, "m404")
	assert.Equal(t, ErrModuleNotFound, err)
}

func TestService_Settings(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := NewService(db)

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, SiteSettings{}, settings)

	seed(t, db, core.CollSiteSettings, settingsDocID, map[string]interface{}{
		"siteName":    "EduSite",
		"socialLinks": map[string]interface{}{"facebook": "https://fb.example/edusite"},
	})
	settings, err = svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EduSite", settings.SiteName)
	assert.Equal(t, "https://fb.example/edusite", settings.SocialLinks["facebook"])
}

func TestService_Resources(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	svc := NewService(db)

	seed(t, db, core.CollResources, "a", map[string]interface{}{"title": "Syllabus", "order": 2})
	seed(t, db, core.CollResources, "b", map[string]interface{}{"title": "Shortcuts", "order": 1})

	resources, err := svc.ListResources(ctx)
	require.NoError(t, err)
	if assert.Len(t, resources, 2) {
		assert.Equal(t, "Shortcuts", resources[0].Title)
	}
}
