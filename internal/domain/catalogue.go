package domain

// Artist is a roster entry of the label catalogue
type Artist struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Act         string            `json:"act"`
	Description string            `json:"description"`
	Styles      []string          `json:"styles"`
	Social      map[string]string `json:"social"`
	Country     string            `json:"country"`
	Image       string            `json:"image"`
	Videos      []string          `json:"videos,omitempty"`
	Slug        string            `json:"slug"`
}

// Track is one entry of a release track list
type Track struct {
	Title    string `json:"title"`
	Duration string `json:"duration,omitempty"`
}

// Release is a published record of the label catalogue
type Release struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Artist        string            `json:"artist"`
	Type          string            `json:"type"`
	ReleaseDate   string            `json:"releaseDate"`
	CatalogNumber string            `json:"catalogNumber,omitempty"`
	Cover         string            `json:"cover"`
	ExternalIDs   map[string]string `json:"externalIds"`
	Description   string            `json:"description,omitempty"`
	Tracks        []Track           `json:"tracks,omitempty"`
}

// NextArtistID returns max(id)+1 over artists
func NextArtistID(artists []Artist) int {
	next := 1
	for _, a := range artists {
		if a.ID >= next {
			next = a.ID + 1
		}
	}
	return next
}

// NextReleaseID returns max(id)+1 over releases
func NextReleaseID(releases []Release) int {
	next := 1
	for _, r := range releases {
		if r.ID >= next {
			next = r.ID + 1
		}
	}
	return next
}
