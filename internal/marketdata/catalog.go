package marketdata

import "strings"

type catalogEntry struct {
	symbol   string
	name     string
	market   string
	industry string
	fullName string
}

// catalog is the static list of known instruments the mock provider serves.
// Codes follow the Shanghai/Shenzhen convention the product targets.
var catalog = []catalogEntry{
	{"600000", "SPD Bank", "SH", "Banking", "Shanghai Pudong Development Bank Co., Ltd."},
	{"601398", "ICBC", "SH", "Banking", "Industrial and Commercial Bank of China Ltd."},
	{"000001", "Ping An Bank", "SZ", "Banking", "Ping An Bank Co., Ltd."},
	{"601288", "ABC", "SH", "Banking", "Agricultural Bank of China Ltd."},
	{"601988", "Bank of China", "SH", "Banking", "Bank of China Ltd."},
	{"600519", "Kweichow Moutai", "SH", "Liquor", "Kweichow Moutai Co., Ltd."},
	{"000858", "Wuliangye", "SZ", "Liquor", "Wuliangye Yibin Co., Ltd."},
	{"601318", "Ping An Insurance", "SH", "Insurance", "Ping An Insurance (Group) Company of China, Ltd."},
	{"600036", "CMB", "SH", "Banking", "China Merchants Bank Co., Ltd."},
	{"000651", "Gree Electric", "SZ", "Appliances", "Gree Electric Appliances, Inc. of Zhuhai"},
	{"600887", "Yili", "SH", "Food & Beverage", "Inner Mongolia Yili Industrial Group Co., Ltd."},
	{"601857", "PetroChina", "SH", "Oil & Gas", "PetroChina Company Ltd."},
}

// lookupCatalog returns the catalog entry for symbol. Unknown codes get a
// generic identity so trades against unlisted instruments still carry a
// display name.
func lookupCatalog(symbol string) catalogEntry {
	for _, s := range catalog {
		if s.symbol == symbol {
			return s
		}
	}
	return catalogEntry{symbol: symbol, name: "Unknown " + symbol, market: "UNKNOWN"}
}

// searchCatalog filters the catalog by a case-insensitive substring match
// on code, display name or full company name.
func searchCatalog(keyword string, limit int) []catalogEntry {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	var out []catalogEntry
	for _, s := range catalog {
		if keyword == "" ||
			strings.Contains(strings.ToLower(s.symbol), keyword) ||
			strings.Contains(strings.ToLower(s.name), keyword) ||
			strings.Contains(strings.ToLower(s.fullName), keyword) {
			out = append(out, s)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}
