package file

// Info is the public description of a stored object.
type Info struct {
	Code          string `json:"code"`
	URL           string `json:"url"`
	RawName       string `json:"rawName"`
	Type          string `json:"type"`
	Size          string `json:"size"`
	RawSize       int64  `json:"rawSize"`
	Date          string `json:"date"`
	UnixDate      int64  `json:"unixDate"`
	Ago           string `json:"ago"`
	DownloadCount int    `json:"downloadCount"`
	Checksum      string `json:"checksum"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	Thumbnail     string `json:"thumbnail,omitempty"`
}

// SearchResult is an Info plus flags telling which field matched the query.
type SearchResult struct {
	Info
	IsCode    bool `json:"isCode"`
	IsRawName bool `json:"isRawName"`
}
