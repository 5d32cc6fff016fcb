package ics_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/loamcal/pkg/calendar"
	"github.com/aretw0/loamcal/pkg/ics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	events := []calendar.Event{
		{Title: "Standup", Start: start, End: start.Add(30 * time.Minute)},
		{Title: "Yoga", Start: start.Add(24 * time.Hour), End: start.Add(25 * time.Hour), GroupID: "Yoga"},
		{Title: "No start"},
	}

	var buf bytes.Buffer
	require.NoError(t, ics.Encode(&buf, "", events))
	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "PRODID:"+ics.DefaultProductID)
	assert.Contains(t, out, "SUMMARY:Standup")
	assert.Contains(t, out, "DTSTART:20240101T090000Z")
	assert.Contains(t, out, "RELATED-TO:Yoga")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))

	entries, err := ics.Decode(&buf)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Standup", entries[0].Title())
	assert.Equal(t, ics.UID(events[0]), entries[0].UID)
	assert.True(t, start.Equal(entries[0].Start))
	assert.True(t, start.Add(30*time.Minute).Equal(entries[0].End))
}

func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ics.Encode(&buf, "", nil))
	assert.Zero(t, buf.Len())
}

const sample = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:abc-123\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART:20240102T080000Z\r\n" +
	"DTEND:20240102T090000Z\r\n" +
	"SUMMARY:Gym\r\n" +
	"DESCRIPTION:Leg day\r\n" +
	"LOCATION:Downtown\r\n" +
	"RRULE:FREQ=WEEKLY;COUNT=4\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VTODO\r\n" +
	"UID:todo-1\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"END:VTODO\r\n" +
	"END:VCALENDAR\r\n"

func TestDecode_Document(t *testing.T) {
	entries, err := ics.Decode(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	doc := entries[0].Document(calendar.Context{DefaultTags: []string{"Imported"}})
	assert.Equal(t, "Gym", doc.ID)
	assert.Equal(t, "Leg day", doc.Content)
	assert.Equal(t, "20240102080000000", doc.String("startDate"))
	assert.Equal(t, "20240102090000000", doc.String("endDate"))
	assert.Equal(t, "FREQ=WEEKLY;COUNT=4", doc.String(calendar.FieldRRule))
	assert.Equal(t, "Downtown", doc.String("location"))
	assert.Equal(t, []string{"Imported"}, doc.Tags())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := ics.Decode(strings.NewReader("not a calendar"))
	assert.Error(t, err)
}
