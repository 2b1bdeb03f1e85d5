package slack

// ResponseTypeEphemeral shows a reply only to the user who ran the command.
const ResponseTypeEphemeral = "ephemeral"

// Response is the JSON body returned to Slack.
type Response struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}

// Ephemeral wraps text in an ephemeral response.
func Ephemeral(text string) Response {
	return Response{ResponseType: ResponseTypeEphemeral, Text: text}
}

// ErrorResponse is the JSON body for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
