// Package label renders bucket boundaries as locale-aware chart labels.
package label

import (
	"time"

	"github.com/huangsam/tally/schema"
	"golang.org/x/text/language"
)

// layouts holds the time layouts of one locale, per granularity.
type layouts struct {
	hour  string
	day   string
	month string
}

// supported lists the locales with dedicated layouts. The first entry is the
// fallback for unmatched tags.
var supported = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.German,
	language.French,
	language.Spanish,
	language.Japanese,
	language.Chinese,
	language.BrazilianPortuguese,
}

var byLocale = map[language.Tag]layouts{
	language.AmericanEnglish:     {hour: "Jan 2, 2006, 3 PM", day: "Jan 2, 2006", month: "Jan 2006"},
	language.BritishEnglish:      {hour: "2 Jan 2006, 15:00", day: "2 Jan 2006", month: "Jan 2006"},
	language.German:              {hour: "02.01.2006, 15:00", day: "02.01.2006", month: "01.2006"},
	language.French:              {hour: "02/01/2006 15:00", day: "02/01/2006", month: "01/2006"},
	language.Spanish:             {hour: "2/1/2006, 15:00", day: "2/1/2006", month: "1/2006"},
	language.Japanese:            {hour: "2006/01/02 15:00", day: "2006/01/02", month: "2006/01"},
	language.Chinese:             {hour: "2006/1/2 15:00", day: "2006/1/2", month: "2006年1月"},
	language.BrazilianPortuguese: {hour: "02/01/2006, 15:00", day: "02/01/2006", month: "01/2006"},
}

var matcher = language.NewMatcher(supported)

// Match returns the supported locale closest to the given tag.
func Match(tag language.Tag) language.Tag {
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}

// Parse reads a BCP 47 locale string. An empty string selects the fallback locale.
func Parse(s string) (language.Tag, error) {
	if s == "" {
		return supported[0], nil
	}
	return language.Parse(s)
}

// Format renders t for the given granularity and locale. Hour labels include
// the clock time; day and month labels do not.
func Format(t time.Time, g schema.Granularity, locale language.Tag) string {
	l := byLocale[Match(locale)]
	switch g {
	case schema.HourGranularity:
		return t.Format(l.hour)
	case schema.MonthGranularity:
		return t.Format(l.month)
	default:
		return t.Format(l.day)
	}
}
