// Every string the kiosk shows or speaks lives here. The kiosk talks to
// patients in Telugu; backend strings in any other script are never read
// out.

package outcome

import "unicode"

// ── Status ───────────────────────────────────────────────────────

// LineSubmitting is shown the moment a scan is accepted.
func LineSubmitting() string {
	return "మీ అపాయింట్‌మెంట్ బుక్ అవుతోంది..."
}

// LineBooked is the success status line.
func LineBooked() string {
	return "అపాయింట్‌మెంట్ విజయవంతంగా బుక్ అయింది."
}

// ── Speech ───────────────────────────────────────────────────────

const (
	placeholderDoctor = "డాక్టర్"
	placeholderTime   = "నిర్దేశిత సమయం"
)

// LineBookedSpeech announces the doctor and slot. Missing fields fall back
// to generic wording.
func LineBookedSpeech(doctor, when string) string {
	if doctor == "" {
		doctor = placeholderDoctor
	}
	if when == "" {
		when = placeholderTime
	}
	return "మీ అపాయింట్‌మెంట్ " + doctor + " వద్ద " + when + "కి బుక్ అయింది."
}

// ── Failures ─────────────────────────────────────────────────────

// ExpiredMarker is the phrase the booking service uses when the 14-day
// revisit window has lapsed.
const ExpiredMarker = "వాలిడిటీ సమయం పూర్తైంది"

// LineExpired replaces any message carrying ExpiredMarker.
func LineExpired() string {
	return "మీ 14 రోజుల వాలిడిటీ సమయం పూర్తైంది. దయచేసి కొత్త రిజిస్ట్రేషన్ చేయించుకోండి."
}

// LineInvalidIdentifier replaces messages that are not in the kiosk's
// script, including transport errors.
func LineInvalidIdentifier() string {
	return "తప్పు CR నంబర్. దయచేసి హెల్ప్ డెస్క్‌ను సంప్రదించండి."
}

// FixedFailureLines lists the failure messages that do not depend on the
// booking, for prefetching.
func FixedFailureLines() []string {
	return []string{LineExpired(), LineInvalidIdentifier()}
}

// TeluguBlock is the Unicode Telugu block, U+0C00 to U+0C7F.
var TeluguBlock = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0C00, Hi: 0x0C7F, Stride: 1}},
}
