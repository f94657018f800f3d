package views

// SiteConfig holds site-wide settings populated from environment variables.
// Every handler passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME  (default "Blog")
	URL         string // SITE_URL   (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Session describes the visitor a page is rendered for.
type Session struct {
	Admin     bool
	CSRFToken string
}

// Article is the view of a stored article.
type Article struct {
	Title     string
	Slug      string
	Teaser    string
	Content   string // sanitized HTML
	Date      string // display date, empty for drafts
	ISODate   string // YYYY-MM-DD of the effective date
	Published bool
	Link      string
}

// ArticleLink is the "read next" teaser shown under an article.
type ArticleLink struct {
	Title  string
	Teaser string
	Link   string
}

// HomePage is the editable document stored under the "home" page id.
type HomePage struct {
	Title        string        `json:"title,omitempty"`
	FAQs         string        `json:"faqs,omitempty"`
	Testimonials []Testimonial `json:"testimonials,omitempty"`
	IntroStep1   *IntroStep    `json:"introStep1,omitempty"`
	IntroStep2   *IntroStep    `json:"introStep2,omitempty"`
	IntroStep3   *IntroStep    `json:"introStep3,omitempty"`
	IntroStep4   *IntroStep    `json:"introStep4,omitempty"`
	BioPicture   string        `json:"bioPicture,omitempty"`
	BioTitle     string        `json:"bioTitle,omitempty"`
	Bio          string        `json:"bio,omitempty"`
}

// IntroSteps returns the filled-in introduction steps in order.
func (h HomePage) IntroSteps() []IntroStep {
	var steps []IntroStep
	for _, s := range []*IntroStep{h.IntroStep1, h.IntroStep2, h.IntroStep3, h.IntroStep4} {
		if s != nil {
			steps = append(steps, *s)
		}
	}
	return steps
}

// IntroStep is one step of the home page introduction.
type IntroStep struct {
	Label       string `json:"label"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Testimonial is a quote shown on the home page.
type Testimonial struct {
	Text  string `json:"text"`
	Image string `json:"image"`
	Name  string `json:"name"`
}

// ImprintPage is the editable document stored under the "imprint" page id.
type ImprintPage struct {
	Title   string `json:"title"`
	Imprint string `json:"imprint"`
	Price   string `json:"price,omitempty"`
}
