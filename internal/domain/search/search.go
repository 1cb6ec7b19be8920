package search

import (
	"time"
)

// Mode selects the search strategy.
type Mode string

const (
	ModeWeb      Mode = "web"
	ModeNews     Mode = "news"
	ModeImages   Mode = "images"
	ModeVideos   Mode = "videos"
	ModeAcademic Mode = "academic"
	ModeTrending Mode = "trending"
	ModeLocal    Mode = "local"
	ModeRecent   Mode = "recent"
)

// ParseMode maps a search_type value to a Mode. Unknown values fall back to web.
func ParseMode(s string) Mode {
	switch m := Mode(s); m {
	case ModeWeb, ModeNews, ModeImages, ModeVideos, ModeAcademic, ModeTrending, ModeLocal, ModeRecent:
		return m
	default:
		return ModeWeb
	}
}

// Request describes one search.
type Request struct {
	Query      string
	Mode       Mode
	MaxResults int
	Category   string
	Location   string
	Days       int
}

// Result is a single search hit.
type Result struct {
	Title          string `json:"title"`
	Link           string `json:"link"`
	Snippet        string `json:"snippet"`
	Source         string `json:"source"`
	SearchType     Mode   `json:"search_type"`
	Date           string `json:"date,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	AcademicScore  int    `json:"academic_score,omitempty"`
	LocalRelevance bool   `json:"local_relevance,omitempty"`
}

// Record is a logged search.
type Record struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	Query        string    `json:"query"`
	SearchType   Mode      `json:"searchType"`
	ResultsCount int       `json:"resultsCount"`
	CreatedAt    time.Time `json:"createdAt"`
}
