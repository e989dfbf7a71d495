package email

const (
	subjectIntakeFormsNeuro = "Your neurological intake questionnaire"
	subjectIntakeFormsMSK   = "Your musculoskeletal intake questionnaire"
	subjectVisitScheduled   = "Your first visit is booked"
	subjectStallDigestFmt   = "%d prospects waiting on follow-up"
)
