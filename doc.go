// Package loamcal is the composition root of the loamcal calendar.
//
// It connects the record store (pkg/core) with its storage adapters
// (pkg/adapters/fs, pkg/adapters/sqlite) and exposes the calendar
// components built on top of it.
//
// Records are titled documents with frontmatter. A record carrying a
// startDate and an endDate field is a calendar event:
//
//	---
//	caption: Team standup
//	startDate: "20240101090000000"
//	endDate: "20240101093000000"
//	tags: [Work]
//	---
//	Notes for the standup.
//
// Usage:
//
//	svc, err := loamcal.New("./vault", loamcal.WithAutoInit(true))
//	if err != nil { ... }
//	if err := svc.Load(ctx); err != nil { ... }
//
//	cfg := calendar.Context{}
//	events, err := calendar.NewSource(cfg, svc, logger).Events(ctx, from, to)
//	html := calendar.NewFormatter(cfg, svc).EventContent(calendar.ContentArg{
//		Event: events[0],
//		View:  calendar.ViewWeek,
//	}).HTML
package loamcal
