package model

// PageType identifies how a story page is laid out and narrated.
type PageType string

const (
	PageCover     PageType = "cover"
	PageScripture PageType = "scripture"
	PageContent   PageType = "content"
	PageList      PageType = "list"
	PageCTA       PageType = "cta"
)

// ValidPageTypes are the page types a manifest may contain.
var ValidPageTypes = map[PageType]bool{
	PageCover:     true,
	PageScripture: true,
	PageContent:   true,
	PageList:      true,
	PageCTA:       true,
}

// Page is one presentation page of a compiled story.
type Page struct {
	Type      PageType `json:"type"`
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle,omitempty"`
	Text      string   `json:"text,omitempty"`
	Items     []string `json:"items,omitempty"`
	Link      string   `json:"link,omitempty"`
	LinkLabel string   `json:"link_label,omitempty"`
	Continued bool     `json:"continued,omitempty"`
}

// Manifest is the ordered page list compiled from generated content.
type Manifest struct {
	Version int    `json:"version"`
	Pages   []Page `json:"pages"`
}
