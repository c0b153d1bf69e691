package clean

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/brogergvhs/pollsmooth/internal/diag"
)

var ErrBadDate = errors.New("cannot resolve date")

const (
	endash = "–"
	emdash = "—"
	hyphen = "-"
	minus  = "−"
)

var (
	dateFootnote = regexp.MustCompile(`\[[^\]]*\]`)
	dateSplit    = regexp.MustCompile(`[\-,\s/]+`)

	yearToken  = regexp.MustCompile(`^[0-9]{4}`)
	monthToken = regexp.MustCompile(`^[A-Za-z]+`)
	dayToken   = regexp.MustCompile(`^[0-9]{1,2}`)
)

var months = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// TokeniseDate splits a date range expression such as "12–15 Mar 2022"
// into its day, month and year tokens.
func TokeniseDate(s string) []string {
	s = strings.TrimSpace(s)
	s = dateFootnote.ReplaceAllString(s, "")
	s = strings.NewReplacer(endash, hyphen, emdash, hyphen, minus, hyphen).Replace(s)
	s = strings.ReplaceAll(s, "c. ", "")

	var out []string
	for _, tok := range dateSplit.Split(s, -1) {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func lookupMonth(tok string) (time.Month, bool) {
	if len(tok) < 3 {
		return 0, false
	}
	m, ok := months[strings.ToLower(tok[:3])]
	return m, ok
}

type datePart struct {
	day   int
	month time.Month
	year  int
}

func (p datePart) complete() bool {
	return p.day != 0 && p.month != 0 && p.year != 0
}

func (p datePart) time() (time.Time, error) {
	if p.year == 0 || p.month == 0 {
		return time.Time{}, fmt.Errorf("%w: missing year or month", ErrBadDate)
	}
	t := time.Date(p.year, p.month, p.day, 0, 0, 0, 0, time.UTC)
	if p.day < 1 || t.Day() != p.day {
		return time.Time{}, fmt.Errorf("%w: day %d out of range for %s %d", ErrBadDate, p.day, p.month, p.year)
	}
	return t, nil
}

// MeanDate returns the midpoint of the first and last dates implied by
// tokens, truncated to midnight UTC.
//
// Tokens are read right to left. The first time a complete day, month
// and year have been seen that date is the last day of the range. The
// scan carries on so that each part ends up holding its leftmost token,
// which gives the first day. A range without any day token is taken to
// start and end on the first of the month.
func MeanDate(tokens []string, log *diag.Log) (time.Time, error) {
	var (
		cur     datePart
		last    time.Time
		hasLast bool
	)

	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]

		switch {
		case yearToken.MatchString(tok):
			cur.year, _ = strconv.Atoi(yearToken.FindString(tok))
		case monthToken.MatchString(tok):
			m, ok := lookupMonth(tok)
			if !ok {
				log.Warnf("%q is not a month in date tokens %v", tok, tokens)
				continue
			}
			cur.month = m
		case dayToken.MatchString(tok):
			cur.day, _ = strconv.Atoi(dayToken.FindString(tok))
		default:
			log.Warnf("%q not recognised in date tokens %v", tok, tokens)
			continue
		}

		if !hasLast && cur.complete() {
			t, err := cur.time()
			if err != nil {
				return time.Time{}, fmt.Errorf("tokens %v: %w", tokens, err)
			}
			last, hasLast = t, true
		}
	}

	if cur.month == 0 {
		log.Warnf("missing month in date tokens %v", tokens)
	}

	if !hasLast {
		if cur.day == 0 {
			cur.day = 1
		}
		t, err := cur.time()
		if err != nil {
			return time.Time{}, fmt.Errorf("tokens %v: %w", tokens, err)
		}
		last = t
	}

	first, err := cur.time()
	if err != nil {
		return time.Time{}, fmt.Errorf("tokens %v: %w", tokens, err)
	}
	if first.After(last) {
		log.Warnf("first day %s is after last day %s in date tokens %v",
			first.Format("2006-01-02"), last.Format("2006-01-02"), tokens)
	}

	mid := first.Add(last.Sub(first) / 2)
	return time.Date(mid.Year(), mid.Month(), mid.Day(), 0, 0, 0, 0, time.UTC), nil
}
