package vanilla

// ChromeClass is a typed identifier for the CSS classes the templates emit.
type ChromeClass string

const (
	ClassPhases   ChromeClass = "phases-container"
	ClassPhase    ChromeClass = "phase"
	ClassTaskList ChromeClass = "task-list"
	ClassHidden   ChromeClass = "hidden"
)

// chromeClasses is the template view of the class names.
func chromeClasses() map[string]string {
	return map[string]string{
		"phases":   string(ClassPhases),
		"phase":    string(ClassPhase),
		"taskList": string(ClassTaskList),
		"hidden":   string(ClassHidden),
	}
}
