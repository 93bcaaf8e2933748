package model

import (
	"fmt"
	"strings"
)

// Grammar of a submitted announcement:
//
//	<body>%%<row>[\n<row>...]
//	<row>  = <pair>[&&<pair>...]
//	<pair> = <label> - <url>
//
// Only the first %% splits; any further %% belongs to the button text.
const (
	sectionDelimiter = "%%"
	pairDelimiter    = "&&"
	labelURLSep      = " - "
)

// allowedURLPrefixes is the URL allow-list for link buttons.
var allowedURLPrefixes = []string{"http://", "https://", "t.me/"}

type ParseErrorKind string

const (
	ParseMissingDelimiter ParseErrorKind = "missing_delimiter"
	ParseEmptySection     ParseErrorKind = "empty_section"
	ParseBadButtonFormat  ParseErrorKind = "bad_button_format"
	ParseEmptyLabelOrURL  ParseErrorKind = "empty_label_or_url"
	ParseInvalidURL       ParseErrorKind = "invalid_url"
	ParseNoButtons        ParseErrorKind = "no_buttons"
)

// ParseError reports why an announcement submission was rejected. Token holds
// the offending fragment where one exists so replies can cite it verbatim.
type ParseError struct {
	Kind  ParseErrorKind
	Token string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("parse announcement: %s: %q", e.Kind, e.Token)
	}
	return fmt.Sprintf("parse announcement: %s", e.Kind)
}

// ParseAnnouncement parses raw submission text into an Announcement.
// It is total: every input yields either an Announcement or a *ParseError.
func ParseAnnouncement(raw string) (*Announcement, error) {
	body, buttonsText, found := strings.Cut(raw, sectionDelimiter)
	if !found {
		return nil, &ParseError{Kind: ParseMissingDelimiter}
	}

	body = strings.TrimSpace(body)
	buttonsText = strings.TrimSpace(buttonsText)
	if body == "" || buttonsText == "" {
		return nil, &ParseError{Kind: ParseEmptySection}
	}

	var rows [][]Button
	for _, line := range strings.Split(buttonsText, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		var row []Button
		for _, pair := range strings.Split(line, pairDelimiter) {
			if strings.TrimSpace(pair) == "" {
				continue
			}

			// Split before trimming so a pair like "A - " still reads as a
			// label with an empty URL rather than a malformed pair.
			parts := strings.Split(pair, labelURLSep)
			if len(parts) != 2 {
				return nil, &ParseError{Kind: ParseBadButtonFormat, Token: strings.TrimSpace(pair)}
			}
			label := strings.TrimSpace(parts[0])
			url := strings.TrimSpace(parts[1])
			if label == "" || url == "" {
				return nil, &ParseError{Kind: ParseEmptyLabelOrURL, Token: strings.TrimSpace(pair)}
			}
			if !allowedURL(url) {
				return nil, &ParseError{Kind: ParseInvalidURL, Token: url}
			}
			row = append(row, Button{Label: label, URL: url})
		}

		// A line of only blank pair tokens contributes no row.
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, &ParseError{Kind: ParseNoButtons}
	}
	return &Announcement{Body: body, Buttons: rows}, nil
}

func allowedURL(url string) bool {
	for _, p := range allowedURLPrefixes {
		if strings.HasPrefix(url, p) {
			return true
		}
	}
	return false
}
