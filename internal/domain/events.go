package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventItemsLoaded     EventType = "ItemsLoaded"
	EventLoadFailed      EventType = "LoadFailed"
	EventSourceExhausted EventType = "SourceExhausted"
	EventItemsVisible    EventType = "ItemsVisible"
	EventSearchChanged   EventType = "SearchChanged"
	EventListReset       EventType = "ListReset"
	EventConfigLoaded    EventType = "ConfigLoaded"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ItemsLoadedEvent is emitted when a page of assets was appended
type ItemsLoadedEvent struct {
	Count int
	Total int
}

func (e ItemsLoadedEvent) Type() EventType { return EventItemsLoaded }

// LoadFailedEvent is emitted when a fetch-more call fails
type LoadFailedEvent struct {
	Message string
	Err     error
}

func (e LoadFailedEvent) Type() EventType { return EventLoadFailed }

// SourceExhaustedEvent is emitted when the source returned an empty page
type SourceExhaustedEvent struct {
	Total int
}

func (e SourceExhaustedEvent) Type() EventType { return EventSourceExhausted }

// VisibleAsset pairs an asset with its list index
type VisibleAsset struct {
	Index int
	Asset Asset
}

// ItemsVisibleEvent is emitted with a batch of assets that scrolled into view
type ItemsVisibleEvent struct {
	Items []VisibleAsset
}

func (e ItemsVisibleEvent) Type() EventType { return EventItemsVisible }

// SearchChangedEvent is emitted when the search query changes
type SearchChangedEvent struct {
	Query   string
	Matches int
}

func (e SearchChangedEvent) Type() EventType { return EventSearchChanged }

// ListResetEvent is emitted when the list is cleared and reloaded
type ListResetEvent struct{}

func (e ListResetEvent) Type() EventType { return EventListReset }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path   string
	Source string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }
