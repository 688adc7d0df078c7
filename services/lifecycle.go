package services

import (
	"context"
	"errors"
	"strings"

	"portal-cms/models"

	"github.com/looplab/fsm"
)

const (
	eventUpdate         = "update"
	eventPublish        = "publish"
	eventSchedule       = "schedule"
	eventCancelSchedule = "cancel_schedule"
	eventAutoPublish    = "auto_publish"
	eventArchive        = "archive"
	eventRevert         = "revert"
	eventSaveDraft      = "save_draft"
)

var (
	draft     = string(models.StatusDraft)
	scheduled = string(models.StatusScheduled)
	published = string(models.StatusPublished)
	archived  = string(models.StatusArchived)
	anyStatus = []string{draft, scheduled, published, archived}
)

// lifecycleEvents is the full transition table of a content item. Events
// that keep the status are listed once per source state.
var lifecycleEvents = fsm.Events{
	{Name: eventUpdate, Src: []string{draft}, Dst: draft},
	{Name: eventUpdate, Src: []string{scheduled}, Dst: scheduled},
	{Name: eventUpdate, Src: []string{published}, Dst: published},

	{Name: eventPublish, Src: []string{draft, scheduled}, Dst: published},
	{Name: eventSchedule, Src: []string{draft, scheduled}, Dst: scheduled},
	{Name: eventCancelSchedule, Src: []string{scheduled}, Dst: draft},
	{Name: eventAutoPublish, Src: []string{scheduled}, Dst: published},
	{Name: eventArchive, Src: []string{published}, Dst: archived},

	{Name: eventRevert, Src: []string{draft}, Dst: draft},
	{Name: eventRevert, Src: []string{scheduled}, Dst: scheduled},
	{Name: eventRevert, Src: []string{published}, Dst: published},
	{Name: eventRevert, Src: []string{archived}, Dst: archived},

	{Name: eventSaveDraft, Src: anyStatus, Dst: draft},
}

// transition returns the status an item in current ends up in after event,
// or a Conflict error when the event is not allowed from current.
func transition(ctx context.Context, current models.ContentStatus, event string) (models.ContentStatus, error) {
	machine := fsm.NewFSM(string(current), lifecycleEvents, fsm.Callbacks{})

	if err := machine.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			return current, models.NewConflictError("cannot %s content with status %s",
				strings.ReplaceAll(event, "_", " "), current)
		}
	}

	return models.ContentStatus(machine.Current()), nil
}
