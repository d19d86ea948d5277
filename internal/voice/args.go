package voice

import (
	"github.com/Mehtab-21/CareConnect-Backend/internal/arbiter"
	"github.com/Mehtab-21/CareConnect-Backend/internal/providers"
	"github.com/Mehtab-21/CareConnect-Backend/internal/triage"
)

// Field aliases, ordered canonical-first. The assistant's prompt drifts
// over time and different tool versions have used different key names;
// each field's accepted spellings live here and nowhere else.
var (
	doctorNameKeys  = []string{"doctor_name", "doctor", "provider_name"}
	patientNameKeys = []string{"patient_name", "name"}
	phoneKeys       = []string{"phone", "patient_phone", "mobile", "phone_number"}
	dateKeys        = []string{"date", "appointment_date", "day"}
	timeKeys        = []string{"time", "appointment_time"}
	specialtyKeys   = []string{"specialization", "specialty"}
	locationKeys    = []string{"zip_code", "zipcode", "location", "city"}
	summaryKeys     = []string{"summary"}
	symptomsKeys    = []string{"symptoms", "symptom_description"}
	quotesKeys      = []string{"quotes", "patient_quotes"}
	keywordsKeys    = []string{"keywords", "extracted_keywords"}
	urgencyKeys     = []string{"urgency", "urgency_score"}
	callIDKeys      = []string{"call_id"}
	transcriptKeys  = []string{"transcript_summary", "transcript"}
)

func parseBookRequest(args ArgumentMap) arbiter.BookRequest {
	return arbiter.BookRequest{
		DoctorName:  args.String(doctorNameKeys...),
		PatientName: args.String(patientNameKeys...),
		Phone:       args.String(phoneKeys...),
		DatePhrase:  args.String(dateKeys...),
		TimePhrase:  args.String(timeKeys...),
	}
}

func parseDiscoverRequest(args ArgumentMap, limit int) providers.DiscoverRequest {
	return providers.DiscoverRequest{
		Specialty: args.String(specialtyKeys...),
		Location:  args.String(locationKeys...),
		Limit:     limit,
	}
}

func parseIngestRequest(args ArgumentMap, msg Message) triage.IngestRequest {
	callID := args.String(callIDKeys...)
	if callID == "" {
		callID = msg.Call.ID
	}
	return triage.IngestRequest{
		Phone:         args.String(phoneKeys...),
		FallbackPhone: msg.Customer.Number,
		PatientName:   args.String(patientNameKeys...),
		Specialty:     args.String(specialtyKeys...),
		Summary:       args.String(summaryKeys...),
		Symptoms:      args.String(symptomsKeys...),
		Quotes:        args.StringList(quotesKeys...),
		Keywords:      args.StringList(keywordsKeys...),
		Urgency:       args.Raw(urgencyKeys...),
		CallID:        callID,
		Location:      args.String(locationKeys...),
		Transcript:    args.String(transcriptKeys...),
	}
}
