package logging

import configfile "github.com/goliatone/go-configfile"

type eventLevel int

const (
	levelDebug eventLevel = iota
	levelWarn
	levelError
)

func level(e configfile.Event) eventLevel {
	switch {
	case e.Kind == configfile.EventParseSkip || e.Kind == configfile.EventMalformedValue:
		return levelWarn
	case e.Err != nil:
		return levelError
	default:
		return levelDebug
	}
}
