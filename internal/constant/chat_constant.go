package constant

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

// Document type tags assigned by the loader and reported by /api/sources.
const (
	DocTypeResume   = "resume"
	DocTypePDF      = "pdf"
	DocTypeQnA      = "qna"
	DocTypeProfile  = "profile"
	DocTypeTimeline = "timeline"
	DocTypeLinks    = "links"
	DocTypeNotes    = "notes"
)

// ApologyMessage is the only user-facing text produced when every model
// candidate fails. The generator never returns an error to the caller.
const ApologyMessage = "I'm at capacity right now. Please try again in a moment."

// Session flags written by the response generator. A flag is set at most
// once per session and never cleared.
const (
	FlagHobbiesMentioned     = "hobbies_mentioned"
	FlagSideProjectMentioned = "side_project_mentioned"
)
