package content

import "time"

type (
	Course struct {
		ID          string  `json:"id"`
		Slug        string  `json:"slug"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Duration    string  `json:"duration"`
		Fee         float64 `json:"fee"`
		Level       string  `json:"level"`
		Image       string  `json:"image"`
		Order       int     `json:"order"`
		IsActive    bool    `json:"isActive"`
	}

	Resource struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Category    string `json:"category"`
		Order       int    `json:"order"`
	}

	BlogPost struct {
		ID          string    `json:"id"`
		Slug        string    `json:"slug"`
		Title       string    `json:"title"`
		Excerpt     string    `json:"excerpt"`
		Content     string    `json:"content,omitempty"`
		Author      string    `json:"author"`
		CoverImage  string    `json:"coverImage"`
		Tags        []string  `json:"tags"`
		PublishedAt time.Time `json:"publishedAt"`
	}

	Review struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Course     string    `json:"course"`
		Rating     int       `json:"rating"`
		Comment    string    `json:"comment"`
		IsApproved bool      `json:"isApproved"`
		CreatedAt  time.Time `json:"createdAt"`
	}

	SiteSettings struct {
		SiteName     string            `json:"siteName"`
		Tagline      string            `json:"tagline"`
		ContactEmail string            `json:"contactEmail"`
		ContactPhone string            `json:"contactPhone"`
		Address      string            `json:"address"`
		SocialLinks  map[string]string `json:"socialLinks"`
	}
)

// LearningModule is the root of the module > chapter > lesson hierarchy.
// Chapters is only filled by Service.ModuleTree.
type LearningModule struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	Chapters    []Chapter `json:"chapters,omitempty"`
}

type Chapter struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Order   int      `json:"order"`
	Lessons []Lesson `json:"lessons"`
}

type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	VideoURL string `json:"videoUrl,omitempty"`
	Duration string `json:"duration,omitempty"`
	Order    int    `json:"order"`
}

// LessonCount returns the number of lessons of the module tree.
func (m LearningModule) LessonCount() int {
	n := 0
	for _, ch := range m.Chapters {
		n += len(ch.Lessons)
	}
	return n
}
