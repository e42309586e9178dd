package model

// Theme preference values.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// WorkingHours is the user's configured working window, "HH:MM" local
// times.
type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AppSettings is the application settings singleton. It is persisted
// as a single object, not a collection.
type AppSettings struct {
	Theme            string       `json:"theme"`
	Notifications    bool         `json:"notifications"`
	CompletionGoal   int          `json:"completionGoal"`
	WorkingHours     WorkingHours `json:"workingHours"`
	UseServerStorage bool         `json:"useServerStorage"`
}

// DefaultAppSettings returns the settings used when none have been
// persisted.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Theme:          ThemeSystem,
		Notifications:  true,
		CompletionGoal: 5,
		WorkingHours:   WorkingHours{Start: "09:00", End: "17:00"},
	}
}
