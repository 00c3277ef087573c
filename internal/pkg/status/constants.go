package status

// Status represents interview session status
type Status int

const (
	// NotStarted - no interview requested yet
	NotStarted Status = iota + 1
	// InProgress - questions are being answered
	InProgress
	// Completed - final state, all answers submitted
	Completed
)

var (
	statusName = map[Status]string{NotStarted: "NOT_STARTED", InProgress: "IN_PROGRESS",
		Completed: "COMPLETED"}
	nameStatus = map[string]Status{"NOT_STARTED": NotStarted, "IN_PROGRESS": InProgress,
		"COMPLETED": Completed}
)

func (st Status) String() string {
	return statusName[st]
}

// From returns status obj from string
func From(st string) Status {
	return nameStatus[st]
}
