package knowledgesearch

type article struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
