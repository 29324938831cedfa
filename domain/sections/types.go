package sections

// Type is the tag that selects a section's props shape and the block that renders it.
type Type string

// Registered section types. Adding a type means adding a tag here, a props
// struct below, a decoder entry in decode.go and a block in application/blocks.
const (
	TypeHero            Type = "hero"
	TypeContentBlock    Type = "contentBlock"
	TypeComparison      Type = "comparisonSection"
	TypeLoopDetail      Type = "loopDetailSection"
	TypeFAQ             Type = "faqSection"
	TypeNavigationCards Type = "navigationCards"
	TypeFeatureGrid     Type = "featureGrid"
	TypeQuote           Type = "quoteBlock"
	TypeCTABanner       Type = "ctaBanner"
	TypeEpisodeList     Type = "episodeList"
)

// Props is the typed payload of a section. The set of implementations is
// closed: only this package can add one.
type Props interface {
	SectionType() Type
	isProps()
}

// Link is a labelled hyperlink used by several blocks.
type Link struct {
	Label string `json:"label" validate:"required,max=80"`
	Href  string `json:"href" validate:"required,max=500"`
}

type HeroProps struct {
	Eyebrow      string `json:"eyebrow,omitempty" validate:"max=80"`
	Headline     string `json:"headline" validate:"required,max=200"`
	Subheadline  string `json:"subheadline,omitempty" validate:"max=500"`
	PrimaryCTA   *Link  `json:"primaryCta,omitempty" validate:"omitempty"`
	SecondaryCTA *Link  `json:"secondaryCta,omitempty" validate:"omitempty"`
}

// ContentBlockProps carries a Markdown body.
type ContentBlockProps struct {
	Heading string `json:"heading,omitempty" validate:"max=200"`
	Body    string `json:"body" validate:"required"`
	Align   string `json:"align,omitempty" validate:"omitempty,oneof=left center"`
}

type ComparisonRow struct {
	Label string `json:"label" validate:"required,max=120"`
	Left  string `json:"left" validate:"max=500"`
	Right string `json:"right" validate:"max=500"`
}

type ComparisonProps struct {
	Heading    string          `json:"heading,omitempty" validate:"max=200"`
	Intro      string          `json:"intro,omitempty" validate:"max=1000"`
	LeftLabel  string          `json:"leftLabel" validate:"required,max=80"`
	RightLabel string          `json:"rightLabel" validate:"required,max=80"`
	Rows       []ComparisonRow `json:"rows" validate:"required,min=1,dive"`
}

type LoopStage struct {
	Name        string   `json:"name" validate:"required,max=80"`
	Description string   `json:"description,omitempty" validate:"max=1000"`
	Metrics     []string `json:"metrics,omitempty" validate:"max=10,dive,max=120"`
}

// LoopDetailProps describes one revenue loop and its stages.
type LoopDetailProps struct {
	Loop    string      `json:"loop" validate:"required,max=80"`
	Summary string      `json:"summary,omitempty" validate:"max=1000"`
	Stages  []LoopStage `json:"stages" validate:"required,min=1,dive"`
	CTA     *Link       `json:"cta,omitempty" validate:"omitempty"`
}

type FAQItem struct {
	Question string `json:"question" validate:"required,max=300"`
	Answer   string `json:"answer" validate:"required"`
}

type FAQProps struct {
	Heading string    `json:"heading,omitempty" validate:"max=200"`
	Items   []FAQItem `json:"items" validate:"required,min=1,dive"`
}

type NavigationCard struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Href        string `json:"href" validate:"required,max=500"`
}

type NavigationCardsProps struct {
	Heading string           `json:"heading,omitempty" validate:"max=200"`
	Cards   []NavigationCard `json:"cards" validate:"required,min=1,dive"`
}

type Feature struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Icon        string `json:"icon,omitempty" validate:"max=40"`
}

type FeatureGridProps struct {
	Heading  string    `json:"heading,omitempty" validate:"max=200"`
	Columns  int       `json:"columns,omitempty" validate:"omitempty,min=1,max=4"`
	Features []Feature `json:"features" validate:"required,min=1,dive"`
}

type QuoteProps struct {
	Quote       string `json:"quote" validate:"required,max=1000"`
	Attribution string `json:"attribution,omitempty" validate:"max=120"`
	Role        string `json:"role,omitempty" validate:"max=120"`
}

type CTABannerProps struct {
	Headline string `json:"headline" validate:"required,max=200"`
	Body     string `json:"body,omitempty" validate:"max=500"`
	CTA      Link   `json:"cta"`
}

type Episode struct {
	Number      int    `json:"number,omitempty" validate:"min=0"`
	Title       string `json:"title" validate:"required,max=200"`
	Summary     string `json:"summary,omitempty" validate:"max=1000"`
	Href        string `json:"href" validate:"required,max=500"`
	PublishedOn string `json:"publishedOn,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// EpisodeListProps lists podcast episodes.
type EpisodeListProps struct {
	Heading  string    `json:"heading,omitempty" validate:"max=200"`
	Episodes []Episode `json:"episodes" validate:"required,min=1,dive"`
}

func (HeroProps) SectionType() Type            { return TypeHero }
func (ContentBlockProps) SectionType() Type    { return TypeContentBlock }
func (ComparisonProps) SectionType() Type      { return TypeComparison }
func (LoopDetailProps) SectionType() Type      { return TypeLoopDetail }
func (FAQProps) SectionType() Type             { return TypeFAQ }
func (NavigationCardsProps) SectionType() Type { return TypeNavigationCards }
func (FeatureGridProps) SectionType() Type     { return TypeFeatureGrid }
func (QuoteProps) SectionType() Type           { return TypeQuote }
func (CTABannerProps) SectionType() Type       { return TypeCTABanner }
func (EpisodeListProps) SectionType() Type     { return TypeEpisodeList }

func (HeroProps) isProps()            {}
func (ContentBlockProps) isProps()    {}
func (ComparisonProps) isProps()      {}
func (LoopDetailProps) isProps()      {}
func (FAQProps) isProps()             {}
func (NavigationCardsProps) isProps() {}
func (FeatureGridProps) isProps()     {}
func (QuoteProps) isProps()           {}
func (CTABannerProps) isProps()       {}
func (EpisodeListProps) isProps()     {}

// Unrecognized holds a stored section whose tag is not registered. It only
// comes out of the lenient decoder; no block renders it.
type Unrecognized struct {
	Tag Type
	Raw []byte
}

// Malformed holds a stored section with a registered tag whose props could
// not be decoded into that tag's shape.
type Malformed struct {
	Tag Type
	Raw []byte
	Err error
}

func (u Unrecognized) SectionType() Type { return u.Tag }
func (m Malformed) SectionType() Type    { return m.Tag }

func (Unrecognized) isProps() {}
func (Malformed) isProps()    {}
