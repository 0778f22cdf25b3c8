package assistant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vayuair/vayuair/internal/airquality"
)

// language holds prompt-side metadata for a supported response language.
type language struct {
	name        string
	instruction string
}

// languages the assistant can answer in. Unknown codes fall back to
// English.
var languages = map[string]language{
	"en": {name: "English", instruction: "Respond in clear, simple English."},
	"hi": {name: "Hindi", instruction: "Respond in Hindi (Devanagari script)."},
	"mr": {name: "Marathi", instruction: "Respond in Marathi (Devanagari script)."},
	"ta": {name: "Tamil", instruction: "Respond in Tamil."},
	"te": {name: "Telugu", instruction: "Respond in Telugu."},
}

// DefaultLanguage is used when the request names no language.
const DefaultLanguage = "en"

func languageFor(code string) language {
	if lang, ok := languages[strings.ToLower(code)]; ok {
		return lang
	}
	return languages[DefaultLanguage]
}

// buildPrompt renders the model prompt from the current snapshot and
// the user's question. An empty question asks for a general briefing.
func buildPrompt(snap *airquality.Snapshot, question, languageCode string) string {
	lang := languageFor(languageCode)

	var b strings.Builder
	b.WriteString("You are an air quality health assistant for people in India. ")
	b.WriteString("Answer briefly and practically, in at most four short sentences. ")
	b.WriteString(lang.instruction)
	b.WriteString("\n\nCurrent conditions:\n")
	fmt.Fprintf(&b, "- Location: %s\n", snap.LocationLabel)
	fmt.Fprintf(&b, "- AQI: %d (%s)\n", snap.AQI, airquality.Category(snap.AQI))
	fmt.Fprintf(&b, "- Dominant pollutant: %s\n", snap.DominantPollutant)

	if len(snap.Pollutants) > 0 {
		pollutants := make([]string, 0, len(snap.Pollutants))
		for p, v := range snap.Pollutants {
			pollutants = append(pollutants, fmt.Sprintf("%s=%.1f", p, v))
		}
		sort.Strings(pollutants)
		fmt.Fprintf(&b, "- Measured levels: %s\n", strings.Join(pollutants, ", "))
	}
	if snap.Weather != nil {
		fmt.Fprintf(&b, "- Weather: %.1f°C, %.0f%% humidity\n",
			snap.Weather.Temperature, snap.Weather.Humidity)
	}

	if question == "" {
		b.WriteString("\nGive the user a short health briefing for these conditions.")
	} else {
		fmt.Fprintf(&b, "\nUser question: %s", question)
	}
	return b.String()
}
