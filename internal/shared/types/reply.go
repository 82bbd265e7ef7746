package types

// Reply is the structured result handed to the presentation layer for one
// input line. The front-end owns prompt decoration and output truncation;
// the Clear flag replaces the raw sentinel so it is never rendered.
type Reply struct {
	// Handled is false when the input was ignored because the user is not
	// in terminal mode. Ignored input is not an error; it falls through to
	// other interpretation layers.
	Handled bool `json:"handled"`

	Output   string `json:"output"`
	Clear    bool   `json:"clear,omitempty"`
	Username string `json:"username,omitempty"`
	Cwd      string `json:"cwd,omitempty"`

	// SessionEnded is set on the reply to a successful exit.
	SessionEnded bool `json:"session_ended,omitempty"`
}

// EnterRequest starts or provisions a terminal session.
type EnterRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// InputRequest carries one line of terminal input.
type InputRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}
