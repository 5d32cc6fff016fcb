// Package calendar renders calendar event content and turns calendar gestures
// into record mutations.
package calendar

import (
	"slices"
	"time"
)

// Record titles and field names shared with the presentation templates.
const (
	DraftTitle        = "$:/state/calendar/create-event"
	DraftCaptionTitle = "$:/state/calendar/create-event-caption"

	JournalTitleConfig = "$:/config/NewJournal/Title"
	JournalTextConfig  = "$:/config/NewJournal/Text"

	DefaultPreviewTemplate = "$:/plugins/loamcal/calendar/popup/EventPreview"
	DefaultCreateTemplate  = "$:/plugins/loamcal/calendar/popup/CreateNewEvent"

	// TitleInputSelector locates the title input of the create modal.
	TitleInputSelector = ".loamcal-create-event-popup > .tc-titlebar.tc-edit-texteditor"

	FieldCalendarEntry = "calendarEntry"
	FieldDraftTitle    = "draft.title"
	FieldRRule         = "rrule"
	FieldExDate        = "exdate"
)

// Host notifications.
const (
	SaveNotification     = "tm-save-tiddler"
	AutoSaveNotification = "tm-auto-save-wiki"
)

// TextPreviewLimit is the number of characters of text shown in an event cell.
const TextPreviewLimit = 2000

const (
	defaultStartField        = "startDate"
	defaultEndField          = "endDate"
	defaultDurationThreshold = 2 * time.Hour
	defaultSaveTimeout       = 2 * time.Second
)

// DefaultPreviewableTypes are the record types whose text is shown in event cells.
var DefaultPreviewableTypes = []string{
	"",
	"text/vnd.tiddlywiki",
	"text/plain",
	"text/markdown",
	"text/x-markdown",
}

// Context is the configuration shared by the formatter, the handlers and the source.
type Context struct {
	StartDateField string   `yaml:"start_date_field" json:"startDateField"`
	EndDateField   string   `yaml:"end_date_field" json:"endDateField"`
	DefaultTags    []string `yaml:"default_tags" json:"defaultTags"`
	ReadOnly       bool     `yaml:"read_only" json:"readOnly"`

	// DurationThreshold switches event cells to the layout that repeats time
	// and duration at the bottom.
	DurationThreshold time.Duration `yaml:"duration_threshold" json:"durationThreshold"`
	PreviewableTypes  []string      `yaml:"previewable_types" json:"previewableTypes"`

	// Mobile limits preview placement to top, bottom and right.
	Mobile bool `yaml:"mobile" json:"mobile"`
	// Filter is a doublestar pattern over titles selecting calendar records.
	Filter      string        `yaml:"filter" json:"filter"`
	SaveTimeout time.Duration `yaml:"save_timeout" json:"saveTimeout"`

	PreviewTemplate string `yaml:"preview_template" json:"previewTemplate"`
	CreateTemplate  string `yaml:"create_template" json:"createTemplate"`
}

// Normalize fills unset fields with their defaults.
func (c *Context) Normalize() {
	if c.StartDateField == "" {
		c.StartDateField = defaultStartField
	}
	if c.EndDateField == "" {
		c.EndDateField = defaultEndField
	}
	if c.DurationThreshold <= 0 {
		c.DurationThreshold = defaultDurationThreshold
	}
	if c.PreviewableTypes == nil {
		c.PreviewableTypes = slices.Clone(DefaultPreviewableTypes)
	}
	if c.Filter == "" {
		c.Filter = "**"
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = defaultSaveTimeout
	}
	if c.PreviewTemplate == "" {
		c.PreviewTemplate = DefaultPreviewTemplate
	}
	if c.CreateTemplate == "" {
		c.CreateTemplate = DefaultCreateTemplate
	}
}

// Normalized returns a copy of c with defaults applied.
func (c Context) Normalized() Context {
	c.DefaultTags = slices.Clone(c.DefaultTags)
	c.PreviewableTypes = slices.Clone(c.PreviewableTypes)
	c.Normalize()
	return c
}

func (c Context) previewable(recordType string) bool {
	return slices.Contains(c.PreviewableTypes, recordType)
}
