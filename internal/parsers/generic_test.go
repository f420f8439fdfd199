package parsers

import (
	"testing"

	"github.com/docket-watch/acquire/pkg/models"
)

func rawPage(identifier, body string) *models.RawContent {
	return &models.RawContent{
		Jurisdiction: "XX",
		Identifier:   identifier,
		URL:          "https://psc.example.gov/docket/" + identifier,
		StatusCode:   200,
		Body:         body,
	}
}

func TestGenericExtractsLabeledRows(t *testing.T) {
	body := `<!DOCTYPE html>
<html>
<head><title>Docket 2024-0042 | Example PSC</title></head>
<body>
<h1>Rate Adjustment Application 2024-0042</h1>
<p>Filed: 03/15/2024</p>
<table>
  <tr><th>Status</th><td>Open</td></tr>
  <tr><th>Company</th><td>Example Gas &amp; Electric</td></tr>
  <tr><th>Industry Type</th><td>Electric</td></tr>
  <tr><th>Description</th><td>General rate case</td></tr>
</table>
</body>
</html>`
	rec, err := Generic(rawPage("2024-0042", body))
	if err != nil {
		t.Fatalf("Generic failed: %v", err)
	}

	if rec.NotFound {
		t.Fatal("Page with content should not be NotFound")
	}
	if rec.Title != "Rate Adjustment Application 2024-0042" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Status != "Open" {
		t.Errorf("Status = %q", rec.Status)
	}
	if rec.OrganizationName != "Example Gas & Electric" {
		t.Errorf("OrganizationName = %q", rec.OrganizationName)
	}
	if rec.Category != "Electric" {
		t.Errorf("Category = %q", rec.Category)
	}
	if rec.FiledDate != "03/15/2024" {
		t.Errorf("FiledDate = %q", rec.FiledDate)
	}
	if rec.Extra["description"] != "General rate case" {
		t.Errorf("Extra description = %q", rec.Extra["description"])
	}
}

func TestGenericNotFoundPhrase(t *testing.T) {
	body := `<html><body><p>No records found for your search.</p></body></html>`
	rec, err := Generic(rawPage("999", body))
	if err != nil {
		t.Fatalf("Generic failed: %v", err)
	}
	if !rec.NotFound {
		t.Error("Expected NotFound for a no-results page")
	}
}

func TestGenericIdentifierAbsenceIsNotFound(t *testing.T) {
	// A search page that silently matched nothing never mentions the docket.
	body := `<html><body><h1>Docket Search</h1><form>...</form></body></html>`
	rec, err := Generic(rawPage("2024-0042", body))
	if err != nil {
		t.Fatalf("Generic failed: %v", err)
	}
	if !rec.NotFound {
		t.Error("Expected NotFound when the identifier never appears")
	}
}

func TestGenericFallsBackToTitleTag(t *testing.T) {
	body := `<html><head><title>Docket 77 Detail</title></head><body>Docket 77</body></html>`
	rec, err := Generic(rawPage("77", body))
	if err != nil {
		t.Fatalf("Generic failed: %v", err)
	}
	if rec.Title != "Docket 77 Detail" {
		t.Errorf("Title = %q", rec.Title)
	}
}

func TestRegistryResolveAndFallback(t *testing.T) {
	r := NewRegistry()

	if !r.Has("GA") || !r.Has("AZ") || !r.Has("IL") {
		t.Error("Built-in parsers missing from registry")
	}
	if r.Has("WY") {
		t.Error("WY should not have a dedicated parser")
	}
	if r.Resolve("WY") == nil {
		t.Error("Resolve must fall back to the generic parser")
	}
}

func TestSafeRecoversPanics(t *testing.T) {
	boom := func(raw *models.RawContent) (*models.PartialRecord, error) {
		panic("nil selection")
	}
	rec, err := Safe(boom)(rawPage("1", "<html></html>"))
	if err == nil {
		t.Fatal("Expected an error from a panicking parser")
	}
	if rec != nil {
		t.Error("Record should be nil after a panic")
	}
}

func TestGeorgiaParser(t *testing.T) {
	body := `<html><body>
<h2 class="title">Georgia Power Rate Case</h2>
<div class="docket-detail">
  <dl>
    <dt>Company</dt><dd>Georgia Power Company</dd>
    <dt>Date Opened</dt><dd>1/4/2023</dd>
    <dt>Status</dt><dd>Closed</dd>
    <dt>Industry</dt><dd>Electric</dd>
  </dl>
</div>
</body></html>`
	rec, err := Georgia(rawPage("44280", body))
	if err != nil {
		t.Fatalf("Georgia failed: %v", err)
	}
	if rec.Title != "Georgia Power Rate Case" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.OrganizationName != "Georgia Power Company" {
		t.Errorf("OrganizationName = %q", rec.OrganizationName)
	}
	if rec.FiledDate != "1/4/2023" {
		t.Errorf("FiledDate = %q", rec.FiledDate)
	}
	if rec.Status != "Closed" {
		t.Errorf("Status = %q", rec.Status)
	}
}

func TestGeorgiaInvalidDocket(t *testing.T) {
	body := `<html><body><p>The docket number is invalid.</p></body></html>`
	rec, err := Georgia(rawPage("0", body))
	if err != nil {
		t.Fatalf("Georgia failed: %v", err)
	}
	if !rec.NotFound {
		t.Error("Expected NotFound for an invalid docket number")
	}
}

func TestArizonaMissingDetailIsNotFound(t *testing.T) {
	body := `<html><body><div class="search-results">Nothing here</div></body></html>`
	rec, err := Arizona(rawPage("E-00000A-00-0000", body))
	if err != nil {
		t.Fatalf("Arizona failed: %v", err)
	}
	if !rec.NotFound {
		t.Error("Expected NotFound when the item detail block is absent")
	}
}

func TestArizonaParser(t *testing.T) {
	body := `<html><body>
<div class="item-detail">
  <h3>TEP 2022 Rate Review</h3>
  <div class="row"><span class="label">Company</span><span class="value">Tucson Electric Power</span></div>
  <div class="row"><span class="label">Docket Date</span><span class="value">06/01/2022</span></div>
  <div class="row"><span class="label">Status</span><span class="value">Docketed</span></div>
  <div class="row"><span class="label">Type</span><span class="value">Rates</span></div>
</div>
</body></html>`
	rec, err := Arizona(rawPage("E-01933A-22-0107", body))
	if err != nil {
		t.Fatalf("Arizona failed: %v", err)
	}
	if rec.OrganizationName != "Tucson Electric Power" {
		t.Errorf("OrganizationName = %q", rec.OrganizationName)
	}
	if rec.Status != "Docketed" {
		t.Errorf("Status = %q", rec.Status)
	}
	if rec.Category != "Rates" {
		t.Errorf("Category = %q", rec.Category)
	}
}

func TestIllinoisParser(t *testing.T) {
	body := `<html><body>
<div class="case-header"><h1>Ameren Illinois Rate Filing</h1></div>
<div class="case-parties"><span class="party-name">Ameren Illinois Company</span></div>
<table class="case-meta">
  <tr><td>Filed</td><td>2024-01-19</td></tr>
  <tr><td>Status</td><td>Active</td></tr>
  <tr><td>Service</td><td>Gas</td></tr>
</table>
</body></html>`
	rec, err := Illinois(rawPage("24-0103", body))
	if err != nil {
		t.Fatalf("Illinois failed: %v", err)
	}
	if rec.Title != "Ameren Illinois Rate Filing" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.OrganizationName != "Ameren Illinois Company" {
		t.Errorf("OrganizationName = %q", rec.OrganizationName)
	}
	if rec.FiledDate != "2024-01-19" {
		t.Errorf("FiledDate = %q", rec.FiledDate)
	}
}
