package activity

import (
	"adminconsole/frontend/shared/html"
	"adminconsole/frontend/shared/paging"
)

// Filter narrows the journal to one entity type; empty means all.
type Filter struct {
	EntityType string
	Page       int
	Size       int
}

type PageData struct {
	html.Page
	Filter      Filter
	EntityTypes []EntityOption
	Rows        paging.Page[Row]
	Sizes       []int
}

type EntityOption struct {
	Value string
	Label string
}

type Row struct {
	ID         int64
	CreatedAt  string
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	Message    string
	BeforeJSON string
	AfterJSON  string
}
