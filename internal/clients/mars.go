package clients

import (
	"time"

	"space-explorer/internal/domain"
)

// CuriosityLanding is the Earth date of Curiosity's sol 0
var CuriosityLanding = time.Date(2012, time.August, 6, 0, 0, 0, 0, time.UTC)

// CuriosityCameras maps camera codes to their full names
func CuriosityCameras() map[string]string {
	return map[string]string{
		"FHAZ":    "Front Hazard Avoidance Camera",
		"RHAZ":    "Rear Hazard Avoidance Camera",
		"MAST":    "Mast Camera",
		"CHEMCAM": "Chemistry and Camera Complex",
		"MAHLI":   "Mars Hand Lens Imager",
		"MARDI":   "Mars Descent Imager",
		"NAVCAM":  "Navigation Camera",
	}
}

// ApproxEarthDate converts a Curiosity sol to an approximate Earth date.
// A sol is about 24h39m; the approximation counts one day per sol.
func ApproxEarthDate(sol int) string {
	return CuriosityLanding.AddDate(0, 0, sol).Format(domain.DateLayout)
}

// ApproxSol converts an Earth date to an approximate Curiosity sol
func ApproxSol(earthDate string) (int, error) {
	t, err := time.Parse(domain.DateLayout, earthDate)
	if err != nil {
		return 0, domain.InvalidArgument("earth_date", "%q is not a YYYY-MM-DD date", earthDate)
	}
	if t.Before(CuriosityLanding) {
		return 0, domain.InvalidArgument("earth_date", "%s is before the Curiosity landing", earthDate)
	}
	return int(t.Sub(CuriosityLanding).Hours() / 24), nil
}
