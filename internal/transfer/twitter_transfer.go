package transfer

type TwitterUser struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

type TwitterUserResponse struct {
	Data TwitterUser `json:"data"`
}

type TwitterAttachments struct {
	MediaKeys []string `json:"media_keys"`
}

type TwitterTweet struct {
	ID          string              `json:"id"`
	Text        string              `json:"text"`
	CreatedAt   string              `json:"created_at"`
	AuthorID    string              `json:"author_id"`
	Attachments *TwitterAttachments `json:"attachments"`
}

type TwitterMedia struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url"`
	PreviewImageURL string `json:"preview_image_url"`
}

type TwitterIncludes struct {
	Media []TwitterMedia `json:"media"`
	Users []TwitterUser  `json:"users"`
}

type TwitterTimelineResponse struct {
	Data     []TwitterTweet  `json:"data"`
	Includes TwitterIncludes `json:"includes"`
	Meta     struct {
		ResultCount int    `json:"result_count"`
		NewestID    string `json:"newest_id"`
		OldestID    string `json:"oldest_id"`
	} `json:"meta"`
}

type TwitterErrorDetail struct {
	Message string `json:"message"`
}

type TwitterErrorResponse struct {
	Title  string               `json:"title"`
	Detail string               `json:"detail"`
	Type   string               `json:"type"`
	Status int                  `json:"status"`
	Errors []TwitterErrorDetail `json:"errors"`
}
