package websearch

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	Sources []Source `json:"sources"`
	Summary string   `json:"summary"`
}

type Source struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
