package parsers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/docket-watch/acquire/pkg/models"
)

// Georgia parses the PSC FACTS docket detail page.
func Georgia(raw *models.RawContent) (*models.PartialRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw.Body))
	if err != nil {
		return nil, err
	}

	if strings.Contains(strings.ToLower(raw.Body), "docket number is invalid") {
		return &models.PartialRecord{NotFound: true}, nil
	}

	rec := &models.PartialRecord{Extra: make(map[string]string)}
	rec.Title = strings.TrimSpace(doc.Find(".docket-title, h2.title").First().Text())

	doc.Find(".docket-detail dt").Each(func(i int, dt *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(dt.Text()))
		value := strings.TrimSpace(dt.Next().Text())
		switch {
		case strings.Contains(label, "company"):
			rec.OrganizationName = value
		case strings.Contains(label, "date opened"):
			rec.FiledDate = value
		case strings.Contains(label, "status"):
			rec.Status = value
		case strings.Contains(label, "industry"):
			rec.Category = value
		}
	})

	if rec.Title == "" && rec.OrganizationName == "" {
		// Markup changed or wrong page entirely; let the generic heuristics
		// have a go before giving up.
		return Generic(raw)
	}
	return rec, nil
}

// Arizona parses the Corporation Commission eDocket item detail page.
func Arizona(raw *models.RawContent) (*models.PartialRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw.Body))
	if err != nil {
		return nil, err
	}

	if doc.Find(".docket-detail, .item-detail").Length() == 0 {
		return &models.PartialRecord{NotFound: true}, nil
	}

	rec := &models.PartialRecord{Extra: make(map[string]string)}
	rec.Title = strings.TrimSpace(doc.Find(".item-detail h3, .docket-detail h3").First().Text())

	doc.Find(".item-detail .row, .docket-detail .row").Each(func(i int, row *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(row.Find(".label, .col-label").First().Text()))
		value := strings.TrimSpace(row.Find(".value, .col-value").First().Text())
		switch {
		case strings.Contains(label, "company"):
			rec.OrganizationName = value
		case strings.Contains(label, "docket date") || strings.Contains(label, "filed"):
			rec.FiledDate = value
		case strings.Contains(label, "status"):
			rec.Status = value
		case strings.Contains(label, "type"):
			rec.Category = value
		}
	})

	return rec, nil
}

// Illinois parses the Commerce Commission docket sheet.
func Illinois(raw *models.RawContent) (*models.PartialRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw.Body))
	if err != nil {
		return nil, err
	}

	if strings.Contains(strings.ToLower(raw.Body), "case not found") {
		return &models.PartialRecord{NotFound: true}, nil
	}

	rec := &models.PartialRecord{Extra: make(map[string]string)}
	rec.Title = strings.TrimSpace(doc.Find("#case-title, .case-header h1").First().Text())
	rec.OrganizationName = strings.TrimSpace(doc.Find(".case-parties .party-name").First().Text())

	doc.Find(".case-meta tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
		value := strings.TrimSpace(cells.Eq(1).Text())
		switch {
		case strings.Contains(label, "filed"):
			rec.FiledDate = value
		case strings.Contains(label, "status"):
			rec.Status = value
		case strings.Contains(label, "service"):
			rec.Category = value
		}
	})

	return rec, nil
}
