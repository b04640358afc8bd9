package content

// Status is the fixed set of editorial states an article passes through.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusInReview  Status = "in_review"
	StatusApproved  Status = "approved"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

var statuses = map[Status]struct{}{
	StatusDraft:     {},
	StatusInReview:  {},
	StatusApproved:  {},
	StatusPublished: {},
	StatusArchived:  {},
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	_, ok := statuses[s]
	return ok
}

// ParseStatus validates a status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", ErrInvalidTransition
	}
	return s, nil
}

type edge struct {
	from Status
	to   Status
}

// transitionActions is the complete transition table. An edge missing here
// does not exist; the status field can never be set to an arbitrary value.
var transitionActions = map[edge]Action{
	{StatusDraft, StatusInReview}:     ActionSubmit,
	{StatusInReview, StatusDraft}:     ActionReject,
	{StatusInReview, StatusApproved}:  ActionApprove,
	{StatusApproved, StatusPublished}: ActionPublish,
	{StatusPublished, StatusArchived}: ActionArchive,
	{StatusArchived, StatusDraft}:     ActionRestore,
}
