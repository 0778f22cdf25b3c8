package geo

import (
	"strings"
)

// KnownCities is the static city table shipped with the app.
// Lookup keys match the primary station feed's city identifiers.
var KnownCities = []KnownCity{
	{DisplayName: "Delhi", LocalizedName: "दिल्ली", Region: "Delhi", LookupKey: "delhi", Latitude: 28.61, Longitude: 77.21},
	{DisplayName: "Mumbai", LocalizedName: "मुंबई", Region: "Maharashtra", LookupKey: "mumbai", Latitude: 19.08, Longitude: 72.88},
	{DisplayName: "Kolkata", LocalizedName: "कोलकाता", Region: "West Bengal", LookupKey: "kolkata", Latitude: 22.57, Longitude: 88.36},
	{DisplayName: "Chennai", LocalizedName: "चेन्नई", Region: "Tamil Nadu", LookupKey: "chennai", Latitude: 13.08, Longitude: 80.27},
	{DisplayName: "Bengaluru", LocalizedName: "बेंगलुरु", Region: "Karnataka", LookupKey: "bangalore", Latitude: 12.97, Longitude: 77.59},
	{DisplayName: "Hyderabad", LocalizedName: "हैदराबाद", Region: "Telangana", LookupKey: "hyderabad", Latitude: 17.39, Longitude: 78.49},
	{DisplayName: "Pune", LocalizedName: "पुणे", Region: "Maharashtra", LookupKey: "pune", Latitude: 18.52, Longitude: 73.86},
	{DisplayName: "Ahmedabad", LocalizedName: "अहमदाबाद", Region: "Gujarat", LookupKey: "ahmedabad", Latitude: 23.03, Longitude: 72.58},
	{DisplayName: "Jaipur", LocalizedName: "जयपुर", Region: "Rajasthan", LookupKey: "jaipur", Latitude: 26.91, Longitude: 75.79},
	{DisplayName: "Lucknow", LocalizedName: "लखनऊ", Region: "Uttar Pradesh", LookupKey: "lucknow", Latitude: 26.85, Longitude: 80.95},
	{DisplayName: "Kanpur", LocalizedName: "कानपुर", Region: "Uttar Pradesh", LookupKey: "kanpur", Latitude: 26.45, Longitude: 80.33},
	{DisplayName: "Nagpur", LocalizedName: "नागपुर", Region: "Maharashtra", LookupKey: "nagpur", Latitude: 21.15, Longitude: 79.09},
	{DisplayName: "Indore", LocalizedName: "इंदौर", Region: "Madhya Pradesh", LookupKey: "indore", Latitude: 22.72, Longitude: 75.86},
	{DisplayName: "Thane", LocalizedName: "ठाणे", Region: "Maharashtra", LookupKey: "thane", Latitude: 19.22, Longitude: 72.97},
	{DisplayName: "Bhopal", LocalizedName: "भोपाल", Region: "Madhya Pradesh", LookupKey: "bhopal", Latitude: 23.26, Longitude: 77.41},
	{DisplayName: "Visakhapatnam", LocalizedName: "विशाखापट्टनम", Region: "Andhra Pradesh", LookupKey: "visakhapatnam", Latitude: 17.69, Longitude: 83.22},
	{DisplayName: "Patna", LocalizedName: "पटना", Region: "Bihar", LookupKey: "patna", Latitude: 25.59, Longitude: 85.14},
	{DisplayName: "Vadodara", LocalizedName: "वडोदरा", Region: "Gujarat", LookupKey: "vadodara", Latitude: 22.31, Longitude: 73.18},
	{DisplayName: "Ghaziabad", LocalizedName: "गाज़ियाबाद", Region: "Uttar Pradesh", LookupKey: "ghaziabad", Latitude: 28.67, Longitude: 77.42},
	{DisplayName: "Ludhiana", LocalizedName: "लुधियाना", Region: "Punjab", LookupKey: "ludhiana", Latitude: 30.9, Longitude: 75.86},
	{DisplayName: "Agra", LocalizedName: "आगरा", Region: "Uttar Pradesh", LookupKey: "agra", Latitude: 27.18, Longitude: 78.01},
	{DisplayName: "Nashik", LocalizedName: "नाशिक", Region: "Maharashtra", LookupKey: "nashik", Latitude: 20.0, Longitude: 73.79},
	{DisplayName: "Faridabad", LocalizedName: "फरीदाबाद", Region: "Haryana", LookupKey: "faridabad", Latitude: 28.41, Longitude: 77.31},
	{DisplayName: "Meerut", LocalizedName: "मेरठ", Region: "Uttar Pradesh", LookupKey: "meerut", Latitude: 28.98, Longitude: 77.71},
	{DisplayName: "Rajkot", LocalizedName: "राजकोट", Region: "Gujarat", LookupKey: "rajkot", Latitude: 22.3, Longitude: 70.8},
	{DisplayName: "Varanasi", LocalizedName: "वाराणसी", Region: "Uttar Pradesh", LookupKey: "varanasi", Latitude: 25.32, Longitude: 82.99},
	{DisplayName: "Srinagar", LocalizedName: "श्रीनगर", Region: "Jammu & Kashmir", LookupKey: "srinagar", Latitude: 34.08, Longitude: 74.8},
	{DisplayName: "Aurangabad", LocalizedName: "औरंगाबाद", Region: "Maharashtra", LookupKey: "aurangabad", Latitude: 19.88, Longitude: 75.34},
	{DisplayName: "Dhanbad", LocalizedName: "धनबाद", Region: "Jharkhand", LookupKey: "dhanbad", Latitude: 23.8, Longitude: 86.43},
	{DisplayName: "Amritsar", LocalizedName: "अमृतसर", Region: "Punjab", LookupKey: "amritsar", Latitude: 31.63, Longitude: 74.87},
	{DisplayName: "Noida", LocalizedName: "नोएडा", Region: "Uttar Pradesh", LookupKey: "noida", Latitude: 28.57, Longitude: 77.33},
	{DisplayName: "Gurugram", LocalizedName: "गुरुग्राम", Region: "Haryana", LookupKey: "gurugram", Latitude: 28.46, Longitude: 77.03},
	{DisplayName: "Chandigarh", LocalizedName: "चंडीगढ़", Region: "Chandigarh", LookupKey: "chandigarh", Latitude: 30.73, Longitude: 76.78},
	{DisplayName: "Coimbatore", LocalizedName: "कोयंबटूर", Region: "Tamil Nadu", LookupKey: "coimbatore", Latitude: 11.02, Longitude: 76.96},
	{DisplayName: "Madurai", LocalizedName: "मदुरै", Region: "Tamil Nadu", LookupKey: "madurai", Latitude: 9.93, Longitude: 78.12},
	{DisplayName: "Kochi", LocalizedName: "कोच्चि", Region: "Kerala", LookupKey: "kochi", Latitude: 9.93, Longitude: 76.27},
	{DisplayName: "Guwahati", LocalizedName: "गुवाहाटी", Region: "Assam", LookupKey: "guwahati", Latitude: 26.14, Longitude: 91.74},
	{DisplayName: "Thiruvananthapuram", LocalizedName: "तिरुवनंतपुरम", Region: "Kerala", LookupKey: "thiruvananthapuram", Latitude: 8.52, Longitude: 76.94},
	{DisplayName: "Ranchi", LocalizedName: "रांची", Region: "Jharkhand", LookupKey: "ranchi", Latitude: 23.34, Longitude: 85.31},
	{DisplayName: "Raipur", LocalizedName: "रायपुर", Region: "Chhattisgarh", LookupKey: "raipur", Latitude: 21.25, Longitude: 81.63},
}

// FindKnownCity matches an identifier against the table's lookup key or
// display name, case-insensitively.
func FindKnownCity(identifier string) (KnownCity, bool) {
	needle := strings.ToLower(strings.TrimSpace(identifier))
	if needle == "" {
		return KnownCity{}, false
	}

	for _, city := range KnownCities {
		if needle == strings.ToLower(city.LookupKey) || needle == strings.ToLower(city.DisplayName) {
			return city, true
		}
	}
	return KnownCity{}, false
}

// SearchKnownCities returns table entries whose name, localized name, or
// region contains the query, up to limit results.
func SearchKnownCities(query string, limit int) []KnownCity {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	var matches []KnownCity
	for _, city := range KnownCities {
		if strings.Contains(strings.ToLower(city.DisplayName), needle) ||
			strings.Contains(strings.ToLower(city.Region), needle) ||
			(city.LocalizedName != "" && strings.Contains(city.LocalizedName, query)) {
			matches = append(matches, city)
			if limit > 0 && len(matches) == limit {
				break
			}
		}
	}
	return matches
}
