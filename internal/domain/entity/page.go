package entity

// PageContent is a read-only snapshot of the live document.
type PageContent struct {
	URL   string
	Title string
	Text  string
	HTML  string
}
