package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hammamikhairi/ottokiosk/internal/domain"
)

// FieldIdentifier is the form field carrying the trimmed identifier.
const FieldIdentifier = "cr_number"

// looseString accepts a JSON string, number or null. The booking service
// sends appointment ids and ages as numbers.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", string(data))
		}
		*s = looseString(n.String())
	}
	return nil
}

// successBody is the JSON returned with a 2xx status.
type successBody struct {
	Status          string      `json:"status"`
	AppointmentID   looseString `json:"appointment_id"`
	Doctor          looseString `json:"doctor"`
	AppointmentTime looseString `json:"appointment_time"`
	Name            looseString `json:"name"`
	CRNumber        looseString `json:"cr_number"`
	Age             looseString `json:"age"`
	Gender          looseString `json:"gender"`
	Department      looseString `json:"department"`
}

func (b successBody) appointment() *domain.Appointment {
	return &domain.Appointment{
		AppointmentID:   strings.TrimSpace(string(b.AppointmentID)),
		Doctor:          strings.TrimSpace(string(b.Doctor)),
		AppointmentTime: strings.TrimSpace(string(b.AppointmentTime)),
		Name:            string(b.Name),
		CRNumber:        string(b.CRNumber),
		Age:             string(b.Age),
		Gender:          string(b.Gender),
		Department:      string(b.Department),
	}
}

// errorBody is the JSON returned with a non-2xx status.
type errorBody struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
