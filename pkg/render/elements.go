package render

// Element ids and names shared by the page markup, the controller surface and
// the HTTP component.
const (
	FormElementID    = "goalForm"
	LoadingElementID = "loading"
	ErrorElementID   = "error-message"
	ResultsElementID = "results-container"
	GoalFieldName    = "goal"
)
