package ics

import (
	"bytes"
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "focusblock/internal/log"
	"focusblock/internal/model"
)

// Parse turns an ICS payload into event templates. Only SUMMARY, DTSTART,
// DTEND, DESCRIPTION and RRULE are consumed; everything else in the feed is
// ignored. Individual malformed VEVENTs are logged and skipped so one broken
// event cannot take down the whole feed.
//
// Start/End are normalized into loc.
func Parse(body []byte, loc *time.Location) ([]model.EventTemplate, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	templates := make([]model.EventTemplate, 0)

	for _, ve := range cal.Events() {
		tmpl, perr := parseVEvent(ve, loc)
		if perr != nil {
			appLog.Error("skipping unparsable VEVENT", perr, "summary", summaryOf(ve))
			continue
		}
		templates = append(templates, tmpl)
	}

	appLog.Info("feed parse completed", "event_count", len(templates))
	return templates, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.EventTemplate, error) {
	var out model.EventTemplate

	p := ve.GetProperty(ical.ComponentPropertySummary)
	if p == nil || p.Value == "" {
		return out, errors.New("missing SUMMARY")
	}
	out.Title = p.Value

	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, errors.New("missing or invalid DTSTART")
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, errors.New("missing or invalid DTEND")
	}
	if end.Before(start) {
		return out, errors.New("DTEND before DTSTART")
	}
	out.Start = start.In(loc)
	out.End = end.In(loc)

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RRule = p.Value
	}

	return out, nil
}

func summaryOf(ve *ical.VEvent) string {
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		return p.Value
	}
	return ""
}
