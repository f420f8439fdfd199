package parsers

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/docket-watch/acquire/pkg/models"
)

var notFoundPhrases = []string{
	"no records found",
	"no results found",
	"no matching dockets",
	"docket not found",
	"no documents were found",
	"0 results",
}

var filedDateRe = regexp.MustCompile(`(?i)(?:filed|opened|date filed|filing date)[:\s]+(\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2}|[A-Z][a-z]+ \d{1,2}, \d{4})`)

// Generic is the best-effort parser used for jurisdictions without a
// dedicated one. It leans on document metadata and common labeling patterns
// rather than site-specific selectors.
func Generic(raw *models.RawContent) (*models.PartialRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw.Body))
	if err != nil {
		return nil, err
	}

	body := strings.ToLower(raw.Body)
	for _, phrase := range notFoundPhrases {
		if strings.Contains(body, phrase) {
			return &models.PartialRecord{NotFound: true}, nil
		}
	}
	// A docket page that never mentions the docket number is a search page
	// that silently matched nothing.
	if raw.Identifier != "" && !strings.Contains(raw.Body, raw.Identifier) {
		return &models.PartialRecord{NotFound: true}, nil
	}

	rec := &models.PartialRecord{Extra: make(map[string]string)}

	rec.Title = firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		strings.TrimSpace(doc.Find("h1").First().Text()),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)

	if m := filedDateRe.FindStringSubmatch(doc.Find("body").Text()); len(m) > 1 {
		rec.FiledDate = m[1]
	}

	// Labeled table rows are the dominant layout on commission sites:
	// <tr><td>Status</td><td>Open</td></tr> and friends.
	doc.Find("tr, dl > div, .field").Each(func(i int, sel *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(sel.Find("th, td, dt, label").First().Text()))
		value := strings.TrimSpace(sel.Find("td, dd, span").Last().Text())
		if value == "" || label == "" || label == strings.ToLower(value) {
			return
		}
		switch {
		case strings.Contains(label, "status"):
			setIfEmpty(&rec.Status, value)
		case strings.Contains(label, "company") || strings.Contains(label, "applicant") || strings.Contains(label, "utility"):
			setIfEmpty(&rec.OrganizationName, value)
		case strings.Contains(label, "type") || strings.Contains(label, "industry") || strings.Contains(label, "category"):
			setIfEmpty(&rec.Category, value)
		case strings.Contains(label, "description"):
			if _, ok := rec.Extra["description"]; !ok {
				rec.Extra["description"] = value
			}
		}
	})

	if rec.OrganizationName == "" {
		rec.OrganizationName = metaContent(doc, `meta[name="author"]`)
	}

	return rec, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}
