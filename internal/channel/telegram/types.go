package telegram

// apiResponse is the Bot API envelope around every method result.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// Update is one entry of a getUpdates result.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is a Bot API message object, reduced to the fields the
// tracker reads.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
	Caption   string `json:"caption"`
	Voice     *Voice `json:"voice"`
}

// User is a Bot API user object.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Chat is a Bot API chat object.
type Chat struct {
	ID int64 `json:"id"`
}

// Voice is a Bot API voice attachment.
type Voice struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
}

// File is a Bot API file descriptor returned by getFile.
type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// getUpdatesResponse is the envelope of a getUpdates call.
type getUpdatesResponse struct {
	apiResponse
	Result []Update `json:"result"`
}

// getMeResponse is the envelope of a getMe call.
type getMeResponse struct {
	apiResponse
	Result User `json:"result"`
}

// getFileResponse is the envelope of a getFile call.
type getFileResponse struct {
	apiResponse
	Result File `json:"result"`
}

// sendMessageRequest is the body of a sendMessage call.
type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// getUpdatesRequest is the body of a getUpdates call.
type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// getFileRequest is the body of a getFile call.
type getFileRequest struct {
	FileID string `json:"file_id"`
}
