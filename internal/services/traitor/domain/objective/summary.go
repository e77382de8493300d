package objective

import "strconv"

// GoalStatus is one goal's entry in a Summary.
type GoalStatus struct {
	// Index is the goal's position in the objective's goal list.
	Index      int
	StatusText string
	// StatusToken and LabelToken are placeholders a renderer may substitute
	// with the status text and its localized label.
	StatusToken string
	LabelToken  string
}

// Summary is the structured goal-status view of an Objective, one entry per
// goal in construction order regardless of completion.
type Summary struct {
	// FormatID is the template used to render each entry.
	FormatID string
	Goals    []GoalStatus
}

// Len returns the number of goal entries.
func (s Summary) Len() int {
	return len(s.Goals)
}

// StatusToken returns the status placeholder for the goal at index.
func StatusToken(index int) string {
	return "[" + strconv.Itoa(index) + ".st]"
}

// LabelToken returns the label placeholder for the goal at index.
func LabelToken(index int) string {
	return "[" + strconv.Itoa(index) + ".sl]"
}

func summarize(formatID string, goals []Goal) Summary {
	entries := make([]GoalStatus, len(goals))
	for i, goal := range goals {
		entries[i] = GoalStatus{
			Index:       i,
			StatusText:  goal.StatusText(),
			StatusToken: StatusToken(i),
			LabelToken:  LabelToken(i),
		}
	}
	return Summary{FormatID: formatID, Goals: entries}
}
