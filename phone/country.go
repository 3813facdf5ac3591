package phone

import (
	"net/url"
	"strings"

	"github.com/fwojciec/sitecontacts"
	"golang.org/x/net/publicsuffix"
)

// maxPrefixLen is the longest dialing prefix in dialingCodes.
const maxPrefixLen = 7

// dialingCodes maps international dialing prefixes to territory tags.
// Dual tags such as "US/CA" mark prefixes shared by several countries.
var dialingCodes = map[string]string{
	// Europe
	"33": "FR", "32": "BE", "41": "CH", "49": "DE", "44": "GB", "34": "ES", "39": "IT",
	"351": "PT", "31": "NL", "43": "AT", "45": "DK", "46": "SE", "47": "NO", "358": "FI",
	"353": "IE", "30": "GR", "48": "PL", "420": "CZ", "36": "HU", "40": "RO", "421": "SK",
	"386": "SI", "385": "HR", "359": "BG", "370": "LT", "371": "LV", "372": "EE", "354": "IS",
	"356": "MT", "357": "CY", "352": "LU", "377": "MC", "378": "SM", "423": "LI", "376": "AD",
	"382": "ME", "381": "RS", "383": "XK", "387": "BA", "389": "MK", "355": "AL", "373": "MD",
	"380": "UA", "375": "BY", "7": "RU/KZ",

	// French overseas territories
	"262": "FR-RE", "590": "FR-GP", "594": "FR-GF", "596": "FR-MQ",
	"508": "FR-PM", "681": "FR-WF", "687": "FR-NC", "689": "FR-PF",

	// UK overseas territories
	"500": "GB-FK", "350": "GB-GI", "290": "GB-SH", "247": "GB-AC",
	"1284": "GB-VG", "1345": "GB-KY", "1441": "GB-BM", "1664": "GB-MS",
	"1649": "GB-TC", "1264": "GB-AI",

	// Dutch Caribbean
	"297": "NL-AW", "599": "NL-CW", "5999": "NL-CW", "721": "NL-SX",

	// US territories
	"1340": "US-VI", "1670": "US-MP", "1671": "US-GU", "1684": "US-AS",
	"1787": "US-PR", "1939": "US-PR",

	// Danish territories
	"299": "DK-GL", "298": "DK-FO",

	// Australian territories; Christmas Island shares +61.
	"672": "AU-NF", "6189164": "AU-CX",

	// New Zealand territories
	"682": "NZ-CK", "683": "NZ-NU", "690": "NZ-TK",

	// Americas
	"1":  "US/CA",
	"52": "MX", "54": "AR", "55": "BR", "56": "CL", "57": "CO", "51": "PE",
	"58": "VE", "593": "EC", "591": "BO", "595": "PY", "598": "UY", "506": "CR", "507": "PA",
	"53": "CU", "509": "HT", "1809": "DO", "1829": "DO", "1849": "DO", "502": "GT", "503": "SV",
	"504": "HN", "505": "NI", "501": "BZ",

	// Caribbean
	"1242": "BS", "1246": "BB", "1268": "AG", "1473": "GD", "1758": "LC",
	"1767": "DM", "1784": "VC", "1868": "TT", "1869": "KN", "1876": "JM",

	// Asia
	"86": "CN", "91": "IN", "81": "JP", "82": "KR", "886": "TW", "852": "HK", "853": "MO",
	"65": "SG", "60": "MY", "66": "TH", "84": "VN", "62": "ID", "63": "PH", "95": "MM",
	"855": "KH", "856": "LA", "673": "BN", "670": "TL", "92": "PK", "880": "BD", "94": "LK",
	"977": "NP", "975": "BT", "960": "MV", "93": "AF", "98": "IR", "964": "IQ", "962": "JO",
	"961": "LB", "963": "SY", "972": "IL", "970": "PS", "971": "AE", "966": "SA", "968": "OM",
	"965": "KW", "973": "BH", "974": "QA", "967": "YE", "90": "TR", "994": "AZ", "995": "GE",
	"374": "AM", "992": "TJ", "993": "TM", "998": "UZ", "996": "KG",

	// North Africa
	"20": "EG", "212": "MA", "213": "DZ", "216": "TN", "218": "LY", "249": "SD",

	// Sub-Saharan Africa
	"27": "ZA", "254": "KE", "255": "TZ", "256": "UG", "234": "NG", "233": "GH", "225": "CI",
	"221": "SN", "223": "ML", "226": "BF", "227": "NE", "228": "TG", "229": "BJ", "230": "MU",
	"231": "LR", "232": "SL", "235": "TD", "236": "CF", "237": "CM", "238": "CV", "239": "ST",
	"240": "GQ", "241": "GA", "242": "CG", "243": "CD", "244": "AO", "245": "GW", "246": "IO",
	"248": "SC", "250": "RW", "251": "ET", "252": "SO", "253": "DJ", "257": "BI", "258": "MZ",
	"260": "ZM", "261": "MG", "263": "ZW", "264": "NA", "265": "MW", "266": "LS", "267": "BW",
	"268": "SZ", "269": "KM",

	// Oceania
	"61": "AU", "64": "NZ", "679": "FJ", "675": "PG", "676": "TO", "677": "SB", "678": "VU",
	"685": "WS", "686": "KI", "688": "TV", "691": "FM", "692": "MH", "680": "PW",
}

// domainCountries maps domain suffixes (without the leading dot) to
// countries.
var domainCountries = map[string]string{
	"fr": "FR", "es": "ES", "it": "IT", "de": "DE", "pt": "PT",
	"be": "BE", "nl": "NL", "ch": "CH", "at": "AT", "lu": "LU",
	"uk": "GB", "co.uk": "GB", "ie": "IE", "se": "SE", "no": "NO",
	"dk": "DK", "fi": "FI", "pl": "PL", "cz": "CZ", "gr": "GR",
	"ru": "RU", "ua": "UA", "ro": "RO", "hu": "HU", "hr": "HR",
	"rs": "RS", "bg": "BG", "si": "SI", "sk": "SK", "lt": "LT",
	"lv": "LV", "ee": "EE", "is": "IS", "tr": "TR",
	"us": "US", "ca": "CA", "mx": "MX", "br": "BR", "ar": "AR",
	"cl": "CL", "co": "CO", "pe": "PE", "ve": "VE", "ec": "EC",
	"cn": "CN", "jp": "JP", "kr": "KR", "in": "IN", "au": "AU",
	"nz": "NZ", "sg": "SG", "my": "MY", "th": "TH", "vn": "VN",
	"id": "ID", "ph": "PH", "hk": "HK", "tw": "TW",
	"za": "ZA", "eg": "EG", "ma": "MA", "ng": "NG", "ke": "KE",
	"ae": "AE", "sa": "SA", "il": "IL", "iq": "IQ", "ir": "IR",
}

// IsDialingCode reports whether prefix is a known dialing code.
func IsDialingCode(prefix string) bool {
	_, ok := dialingCodes[prefix]
	return ok
}

// CountryFromPhone returns the territory of a canonical "+digits" number.
// The longest matching prefix wins.
func CountryFromPhone(number string) (string, bool) {
	digits, ok := strings.CutPrefix(number, "+")
	if !ok {
		return "", false
	}
	for n := min(maxPrefixLen, len(digits)); n >= 1; n-- {
		if country, ok := dialingCodes[digits[:n]]; ok {
			return country, true
		}
	}
	return "", false
}

// CountryFromDomain returns the country of the host's top-level domain.
// rawURL may lack a scheme.
func CountryFromDomain(rawURL string) (string, bool) {
	host := hostname(rawURL)
	if host == "" {
		return "", false
	}

	// The public suffix is the most specific candidate ("co.uk").
	if suffix, _ := publicsuffix.PublicSuffix(host); suffix != "" {
		if country, ok := domainCountries[suffix]; ok {
			return country, true
		}
	}

	labels := strings.Split(host, ".")
	for i := 1; i < len(labels); i++ {
		if country, ok := domainCountries[strings.Join(labels[i:], ".")]; ok {
			return country, true
		}
	}
	return "", false
}

// InferCountry tries each phone in order, then the website domain. It
// returns sitecontacts.CountryUnknown when neither yields a country.
func InferCountry(phones []string, website string) string {
	for _, p := range phones {
		if country, ok := CountryFromPhone(p); ok {
			return country
		}
	}
	if country, ok := CountryFromDomain(website); ok {
		return country
	}
	return sitecontacts.CountryUnknown
}

func hostname(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
}
