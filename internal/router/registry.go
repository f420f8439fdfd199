package router

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Protection classifies the bot defense a jurisdiction's docket site runs.
type Protection int

const (
	// ProtectionNone: plain server-rendered HTML.
	ProtectionNone Protection = iota
	// ProtectionJS: content only appears after client-side rendering.
	ProtectionJS
	// ProtectionWAF: datacenter IPs are fingerprinted and blocked; needs a
	// residential egress.
	ProtectionWAF
	// ProtectionTurnstile: Cloudflare Turnstile interstitial.
	ProtectionTurnstile
	// ProtectionRecaptcha: Google reCAPTCHA v2 gate on the search form.
	ProtectionRecaptcha
)

func (p Protection) String() string {
	switch p {
	case ProtectionNone:
		return "none"
	case ProtectionJS:
		return "js"
	case ProtectionWAF:
		return "waf"
	case ProtectionTurnstile:
		return "turnstile"
	case ProtectionRecaptcha:
		return "recaptcha"
	default:
		return "unknown"
	}
}

// Challenged reports whether the protection requires a solving service.
func (p Protection) Challenged() bool {
	return p == ProtectionTurnstile || p == ProtectionRecaptcha
}

// Jurisdiction describes one state regulatory agency's docket site.
type Jurisdiction struct {
	Code       string
	Agency     string
	// URLTemplate contains one %s verb for the docket identifier.
	URLTemplate string
	Protection  Protection

	// SiteKey is the static challenge widget key when known ahead of time.
	// Empty means the solver must discover it from page content.
	SiteKey string

	// ChallengeMarkers extend the built-in challenge detection strings for
	// this site.
	ChallengeMarkers []string

	// NotFoundMarkers are upstream "no results" phrases. A page matching one
	// yields found=false without an error.
	NotFoundMarkers []string
}

// DocketURL builds the docket page URL for an identifier.
func (j Jurisdiction) DocketURL(identifier string) string {
	return fmt.Sprintf(j.URLTemplate, url.QueryEscape(identifier))
}

// Registry is the per-jurisdiction routing table, built once at startup.
// Lookups are read-only afterwards so no locking is needed.
type Registry struct {
	jurisdictions map[string]Jurisdiction
}

// NewRegistry returns the built-in routing table covering the tracked state
// commissions.
func NewRegistry() *Registry {
	r := &Registry{jurisdictions: make(map[string]Jurisdiction, len(builtin))}
	for _, j := range builtin {
		r.jurisdictions[j.Code] = j
	}
	return r
}

// Get returns the jurisdiction for a code. Unregistered codes get a generic
// best-effort profile (DirectHttp, default markers) rather than an error, so
// a new state can be probed before it is formally onboarded.
func (r *Registry) Get(code string) (Jurisdiction, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if j, ok := r.jurisdictions[code]; ok {
		return j, true
	}
	return Jurisdiction{
		Code:        code,
		Agency:      "unregistered",
		URLTemplate: "",
		Protection:  ProtectionNone,
	}, false
}

// Codes returns all registered jurisdiction codes, sorted.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.jurisdictions))
	for c := range r.jurisdictions {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of registered jurisdictions.
func (r *Registry) Len() int {
	return len(r.jurisdictions)
}

var defaultNotFound = []string{
	"no records found",
	"no results found",
	"no matching dockets",
	"docket not found",
	"0 results",
}

// builtin is the tracked jurisdiction table. Protection flags reflect what
// each site ran the last time it was audited; the engine still detects
// challenges at runtime because sites change their defenses without notice.
var builtin = []Jurisdiction{
	{Code: "AL", Agency: "Alabama Public Service Commission", URLTemplate: "https://psc.alabama.gov/Docket/Details/%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "AR", Agency: "Arkansas Public Service Commission", URLTemplate: "http://www.apscservices.info/efilings/docket_search_results.asp?docket=%s", Protection: ProtectionNone, NotFoundMarkers: append([]string{"no dockets matched"}, defaultNotFound...)},
	{Code: "AZ", Agency: "Arizona Corporation Commission", URLTemplate: "https://edocket.azcc.gov/search/docket-search/item-detail/%s", Protection: ProtectionTurnstile, SiteKey: "0x4AAAAAAADnPIDROrmt1Wwj", NotFoundMarkers: defaultNotFound},
	{Code: "CA", Agency: "California Public Utilities Commission", URLTemplate: "https://apps.cpuc.ca.gov/apex/f?p=401:56:::NO:RP,57,RIR:P5_PROCEEDING_SELECT:%s", Protection: ProtectionJS, NotFoundMarkers: append([]string{"no proceeding found"}, defaultNotFound...)},
	{Code: "CO", Agency: "Colorado Public Utilities Commission", URLTemplate: "https://www.dora.state.co.us/pls/efi/EFI.Show_Docket?p_docket_id=%s", Protection: ProtectionJS, NotFoundMarkers: defaultNotFound},
	{Code: "CT", Agency: "Connecticut Public Utilities Regulatory Authority", URLTemplate: "https://portal.ct.gov/pura/dockets/%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "FL", Agency: "Florida Public Service Commission", URLTemplate: "https://www.floridapsc.com/ClerkOffice/DocketFiling?docket=%s", Protection: ProtectionWAF, NotFoundMarkers: defaultNotFound},
	{Code: "GA", Agency: "Georgia Public Service Commission", URLTemplate: "https://psc.ga.gov/search/facts-docket/?docketId=%s", Protection: ProtectionNone, NotFoundMarkers: append([]string{"docket number is invalid"}, defaultNotFound...)},
	{Code: "IA", Agency: "Iowa Utilities Commission", URLTemplate: "https://efs.iowa.gov/efs/ShowDocketSummary.do?docketNumber=%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "IL", Agency: "Illinois Commerce Commission", URLTemplate: "https://www.icc.illinois.gov/docket/P%s", Protection: ProtectionNone, NotFoundMarkers: append([]string{"case not found"}, defaultNotFound...)},
	{Code: "IN", Agency: "Indiana Utility Regulatory Commission", URLTemplate: "https://iurc.portal.in.gov/docketed-case-details/?id=%s", Protection: ProtectionJS, NotFoundMarkers: defaultNotFound},
	{Code: "KS", Agency: "Kansas Corporation Commission", URLTemplate: "https://estar.kcc.ks.gov/estar/portal/kcc/page/docket-docs/PSC/DocketDetails.aspx?DocketId=%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "KY", Agency: "Kentucky Public Service Commission", URLTemplate: "https://psc.ky.gov/Case/ViewCaseFilings/%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "LA", Agency: "Louisiana Public Service Commission", URLTemplate: "https://lpscstar.louisiana.gov/star/portal/lpsc/page/docket-details/PSC/DocketDetails.aspx?DocketId=%s", Protection: ProtectionRecaptcha, NotFoundMarkers: defaultNotFound},
	{Code: "MA", Agency: "Massachusetts Department of Public Utilities", URLTemplate: "https://eeaonline.eea.state.ma.us/DPU/Fileroom/dockets/bynumber/%s", Protection: ProtectionJS, NotFoundMarkers: defaultNotFound},
	{Code: "MD", Agency: "Maryland Public Service Commission", URLTemplate: "https://webapp.psc.state.md.us/newIntranet/Casenum/CaseAction_new.cfm?CaseNumber=%s", Protection: ProtectionNone, NotFoundMarkers: append([]string{"no case found"}, defaultNotFound...)},
	{Code: "ME", Agency: "Maine Public Utilities Commission", URLTemplate: "https://mpuc-cms.maine.gov/CQM.Public.WebUI/MatterManagement/MatterFilingItem.aspx?FilingSeq=%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "MI", Agency: "Michigan Public Service Commission", URLTemplate: "https://mi-psc.my.site.com/s/case/%s", Protection: ProtectionJS, NotFoundMarkers: defaultNotFound},
	{Code: "MN", Agency: "Minnesota Public Utilities Commission", URLTemplate: "https://efiling.web.commerce.state.mn.us/edockets/searchDocuments.do?method=showeDocketsSearch&docketNumber=%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "MO", Agency: "Missouri Public Service Commission", URLTemplate: "https://efis.psc.mo.gov/Case/CaseDetails/%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "MS", Agency: "Mississippi Public Service Commission", URLTemplate: "https://www.psc.ms.gov/trinityview/mspsc.html?CASEYEAR=%s", Protection: ProtectionJS, NotFoundMarkers: defaultNotFound},
	{Code: "NC", Agency: "North Carolina Utilities Commission", URLTemplate: "https://starw1.ncuc.gov/NCUC/page/docket-docs/PSC/DocketDetails.aspx?DocketId=%s", Protection: ProtectionWAF, NotFoundMarkers: defaultNotFound},
	{Code: "NH", Agency: "New Hampshire Public Utilities Commission", URLTemplate: "https://www.puc.nh.gov/Regulatory/Docketbk/%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "NJ", Agency: "New Jersey Board of Public Utilities", URLTemplate: "https://publicaccess.bpu.state.nj.us/CaseSummary.aspx?case_id=%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "NM", Agency: "New Mexico Public Regulation Commission", URLTemplate: "https://edocket.prc.nm.gov/AspxForms/CaseDetails.aspx?CaseNo=%s", Protection: ProtectionTurnstile, NotFoundMarkers: defaultNotFound},
	{Code: "NV", Agency: "Public Utilities Commission of Nevada", URLTemplate: "https://pucweb1.state.nv.us/PUC2/Dktinfo.aspx?Util=All&DocketNo=%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "NY", Agency: "New York Public Service Commission", URLTemplate: "https://documents.dps.ny.gov/public/MatterManagement/CaseMaster.aspx?MatterCaseNo=%s", Protection: ProtectionJS, NotFoundMarkers: append([]string{"matter not found"}, defaultNotFound...)},
	{Code: "OH", Agency: "Public Utilities Commission of Ohio", URLTemplate: "https://dis.puc.state.oh.us/CaseRecord.aspx?CaseNo=%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "OK", Agency: "Oklahoma Corporation Commission", URLTemplate: "https://apps.occeweb.com/CaseProcessing/PUD/CaseInformation.aspx?CaseNumber=%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "OR", Agency: "Oregon Public Utility Commission", URLTemplate: "https://apps.puc.state.or.us/edockets/docket.asp?DocketID=%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "PA", Agency: "Pennsylvania Public Utility Commission", URLTemplate: "https://www.puc.pa.gov/docket/%s", Protection: ProtectionWAF, NotFoundMarkers: defaultNotFound},
	{Code: "SC", Agency: "South Carolina Public Service Commission", URLTemplate: "https://dms.psc.sc.gov/Web/Dockets/Detail/%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "TN", Agency: "Tennessee Public Utility Commission", URLTemplate: "https://www.tn.gov/tpuc/dockets/%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "TX", Agency: "Public Utility Commission of Texas", URLTemplate: "https://interchange.puc.texas.gov/search/dockets/?controlNumber=%s", Protection: ProtectionWAF, ChallengeMarkers: []string{"request unsuccessful. incapsula"}, NotFoundMarkers: append([]string{"no control numbers matched"}, defaultNotFound...)},
	{Code: "UT", Agency: "Utah Public Service Commission", URLTemplate: "https://psc.utah.gov/docket/%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "VA", Agency: "Virginia State Corporation Commission", URLTemplate: "https://scc.virginia.gov/docketsearch/CASE/%s", Protection: ProtectionJS, NotFoundMarkers: defaultNotFound},
	{Code: "WA", Agency: "Washington Utilities and Transportation Commission", URLTemplate: "https://www.utc.wa.gov/casedocket/%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
	{Code: "WI", Agency: "Public Service Commission of Wisconsin", URLTemplate: "https://apps.psc.wi.gov/APPS/ERF/Default.aspx?util=docket&case=%s", Protection: ProtectionNone, NotFoundMarkers: defaultNotFound},
}
