package ui

import (
	"errors"

	"assetgrip/internal/domain"
	"assetgrip/internal/virtualscroll"
)

// scrollSettledMsg fires one debounce interval after a scroll
type scrollSettledMsg struct {
	seq int
}

// pageLoadedMsg carries the result of a fetch-more call
type pageLoadedMsg struct {
	ticket virtualscroll.LoadTicket
	items  []domain.Asset
	err    error
}

// pagerClosedMsg is sent when the details pager exits
type pagerClosedMsg struct {
	err error
}

// reloadMsg asks the model to drop its assets and start over
type reloadMsg struct{}

// errReloadPending is reported when a reload is requested before the
// previous one was picked up
var errReloadPending = errors.New("reload already pending")

// clearStatusMsg clears a transient status line
type clearStatusMsg struct{}
