package designed

import (
	"loopsite/domain/sections"
	"loopsite/domain/slots"
)

func link(label, href string) *sections.Link {
	return &sections.Link{Label: label, Href: href}
}

func homePage() Page {
	return &page{
		path:        "",
		title:       "The Loop Revenue System",
		description: "Marketing, sales and customer success run as connected loops instead of a one-way funnel.",
		slots: slots.MustConfig(
			slots.Slot{ID: "hero_eyebrow", Kind: slots.KindText, Default: slots.Text("The Loop Revenue System")},
			slots.Slot{ID: "hero_title", Kind: slots.KindText, Default: slots.Text("Stop filling funnels. Start compounding loops.")},
			slots.Slot{ID: "hero_subtitle", Kind: slots.KindParagraph, Default: slots.Text("Every closed deal and every renewal feeds the next round of growth.")},
			slots.Slot{ID: "intro", Kind: slots.KindRichText, Default: slots.Text("A funnel ends at the sale. A **loop** turns each customer into the start of the next cycle.")},
			slots.Slot{ID: "quote", Kind: slots.KindParagraph, Default: slots.Text("Revenue is a system, not a campaign.")},
		),
		build: func(v slots.Values) []sections.Section {
			return []sections.Section{
				sections.New("home-hero", sections.HeroProps{
					Eyebrow:      v.Text("hero_eyebrow"),
					Headline:     v.Text("hero_title"),
					Subheadline:  v.Text("hero_subtitle"),
					PrimaryCTA:   link("Explore the loops", "/loops/marketing"),
					SecondaryCTA: link("Listen to the podcast", "/podcast"),
				}),
				sections.New("home-intro", sections.ContentBlockProps{
					Heading: "Why loops",
					Body:    v.Text("intro"),
				}),
				sections.New("home-comparison", sections.ComparisonProps{
					Heading:    "Funnel vs. loop",
					LeftLabel:  "Funnel",
					RightLabel: "Loop",
					Rows: []sections.ComparisonRow{
						{Label: "Shape", Left: "Linear, ends at the sale", Right: "Circular, restarts with every customer"},
						{Label: "Ownership", Left: "Handed from team to team", Right: "Shared across marketing, sales and success"},
						{Label: "Growth", Left: "Buy more leads", Right: "Compound from existing customers"},
					},
				}),
				sections.New("home-loops", sections.NavigationCardsProps{
					Heading: "The three loops",
					Cards: []sections.NavigationCard{
						{Title: marketingLoop.name, Description: marketingLoop.tagline, Href: "/" + marketingLoop.path},
						{Title: salesLoop.name, Description: salesLoop.tagline, Href: "/" + salesLoop.path},
						{Title: customerSuccessLoop.name, Description: customerSuccessLoop.tagline, Href: "/" + customerSuccessLoop.path},
					},
				}),
				sections.New("home-quote", sections.QuoteProps{Quote: v.Text("quote")}),
			}
		},
	}
}

// loopContent is the compiled-in content of one loop page.
type loopContent struct {
	path    string
	name    string
	tagline string
	summary string
	stages  []string
	next    *sections.Link
}

var (
	marketingLoop = loopContent{
		path:    "loops/marketing",
		name:    "Marketing Loop",
		tagline: "Turn customer stories into the next wave of demand.",
		summary: "Marketing starts from what customers already say about you and turns it into reach.",
		stages:  []string{"Listen", "Publish", "Amplify", "Capture"},
		next:    link("Next: the Sales Loop", "/loops/sales"),
	}
	salesLoop = loopContent{
		path:    "loops/sales",
		name:    "Sales Loop",
		tagline: "Close deals that set up the next introduction.",
		summary: "Sales qualifies on fit and closes in a way that makes the customer a referrer.",
		stages:  []string{"Qualify", "Diagnose", "Prescribe", "Close", "Introduce"},
		next:    link("Next: the Customer Success Loop", "/loops/customer-success"),
	}
	customerSuccessLoop = loopContent{
		path:    "loops/customer-success",
		name:    "Customer Success Loop",
		tagline: "Renewals and referrals that restart the cycle.",
		summary: "Customer success delivers the promised outcome and hands the story back to marketing.",
		stages:  []string{"Onboard", "Deliver", "Expand", "Advocate"},
		next:    link("Back to the Marketing Loop", "/loops/marketing"),
	}
)

func loopPage(l loopContent) Page {
	return &page{
		path:        l.path,
		title:       l.name,
		description: l.tagline,
		slots: slots.MustConfig(
			slots.Slot{ID: "hero_title", Kind: slots.KindText, Default: slots.Text(l.name)},
			slots.Slot{ID: "hero_subtitle", Kind: slots.KindParagraph, Default: slots.Text(l.tagline)},
			slots.Slot{ID: "summary", Kind: slots.KindParagraph, Default: slots.Text(l.summary)},
			slots.Slot{ID: "stages", Kind: slots.KindList, Default: slots.List(l.stages...)},
			slots.Slot{ID: "cta_headline", Kind: slots.KindText, Default: slots.Text("Want help installing the " + l.name + "?")},
		),
		build: func(v slots.Values) []sections.Section {
			names := v.List("stages")
			stages := make([]sections.LoopStage, 0, len(names))
			for _, name := range names {
				stages = append(stages, sections.LoopStage{Name: name})
			}
			return []sections.Section{
				sections.New("loop-hero", sections.HeroProps{
					Eyebrow:     "The Loop Revenue System",
					Headline:    v.Text("hero_title"),
					Subheadline: v.Text("hero_subtitle"),
				}),
				sections.New("loop-detail", sections.LoopDetailProps{
					Loop:    l.name,
					Summary: v.Text("summary"),
					Stages:  stages,
					CTA:     l.next,
				}),
				sections.New("loop-cta", sections.CTABannerProps{
					Headline: v.Text("cta_headline"),
					CTA:      sections.Link{Label: "Book a call", Href: "/contact"},
				}),
			}
		},
	}
}

func podcastPage() Page {
	return &page{
		path:        "podcast",
		title:       "The Loop Revenue Podcast",
		description: "Conversations with operators who run revenue as a loop.",
		slots: slots.MustConfig(
			slots.Slot{ID: "hero_title", Kind: slots.KindText, Default: slots.Text("The Loop Revenue Podcast")},
			slots.Slot{ID: "hero_subtitle", Kind: slots.KindParagraph, Default: slots.Text("Weekly conversations with operators who stopped buying leads.")},
			slots.Slot{ID: "about", Kind: slots.KindRichText, Default: slots.Text("New episodes every Tuesday. Browse all episodes on the [blog](/blog).")},
		),
		build: func(v slots.Values) []sections.Section {
			return []sections.Section{
				sections.New("podcast-hero", sections.HeroProps{
					Headline:    v.Text("hero_title"),
					Subheadline: v.Text("hero_subtitle"),
				}),
				sections.New("podcast-about", sections.ContentBlockProps{Body: v.Text("about")}),
				sections.New("podcast-subscribe", sections.CTABannerProps{
					Headline: "Never miss an episode",
					CTA:      sections.Link{Label: "Subscribe", Href: "/podcast/subscribe"},
				}),
			}
		},
	}
}

func leadershipPage() Page {
	return &page{
		path:        "spiritual-side-of-leadership",
		title:       "The Spiritual Side of Leadership",
		description: "A membership for leaders who want their work to match their values.",
		slots: slots.MustConfig(
			slots.Slot{ID: "hero_title", Kind: slots.KindText, Default: slots.Text("The Spiritual Side of Leadership")},
			slots.Slot{ID: "hero_subtitle", Kind: slots.KindParagraph, Default: slots.Text("Lead from who you are, not from the title you hold.")},
			slots.Slot{ID: "benefits", Kind: slots.KindList, Default: slots.List("Monthly live sessions", "Private community", "Guided reflections")},
			slots.Slot{ID: "join_headline", Kind: slots.KindText, Default: slots.Text("Join the membership")},
		),
		build: func(v slots.Values) []sections.Section {
			benefits := v.List("benefits")
			features := make([]sections.Feature, 0, len(benefits))
			for _, b := range benefits {
				features = append(features, sections.Feature{Title: b})
			}
			return []sections.Section{
				sections.New("leadership-hero", sections.HeroProps{
					Eyebrow:     "Membership",
					Headline:    v.Text("hero_title"),
					Subheadline: v.Text("hero_subtitle"),
					PrimaryCTA:  link("Join", "/spiritual-side-of-leadership/join"),
				}),
				sections.New("leadership-benefits", sections.FeatureGridProps{
					Heading:  "What members get",
					Columns:  3,
					Features: features,
				}),
				sections.New("leadership-join", sections.CTABannerProps{
					Headline: v.Text("join_headline"),
					CTA:      sections.Link{Label: "Become a member", Href: "/spiritual-side-of-leadership/join"},
				}),
			}
		},
	}
}
