package menu

import "menuboard/internal/models"

// Status tells a renderer which of the three page shapes to draw.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Section is one category heading with its cards.
type Section struct {
	Category models.Category `json:"category"`
	Label    string          `json:"label"`
	Items    []ItemView      `json:"items"`
}

// ViewModel is everything a renderer needs for one frame.
type ViewModel struct {
	Status    Status                `json:"status"`
	Message   string                `json:"message,omitempty"`
	Retryable bool                  `json:"retryable"`
	Sections  []Section             `json:"sections"`
	Info      models.RestaurantInfo `json:"restaurant_info"`
}

// Build groups and projects a successful payload.
func Build(items []models.MenuItem, info models.RestaurantInfo) ViewModel {
	buckets := Group(items)
	sections := make([]Section, 0, len(buckets))
	for _, b := range buckets {
		views := make([]ItemView, 0, len(b.Items))
		for _, item := range b.Items {
			views = append(views, Project(item))
		}
		sections = append(sections, Section{
			Category: b.Category,
			Label:    Label(b.Category),
			Items:    views,
		})
	}

	return ViewModel{
		Status:   StatusReady,
		Sections: sections,
		Info:     info,
	}
}

// Loading is the placeholder shown while a fetch cycle is in flight.
func Loading() ViewModel {
	return ViewModel{Status: StatusLoading, Sections: []Section{}}
}

// Failed is the placeholder shown after a failed cycle.
func Failed(message string) ViewModel {
	return ViewModel{
		Status:    StatusError,
		Message:   message,
		Retryable: true,
		Sections:  []Section{},
	}
}

// ItemCount returns the number of cards across all sections.
func (v ViewModel) ItemCount() int {
	n := 0
	for _, s := range v.Sections {
		n += len(s.Items)
	}
	return n
}
